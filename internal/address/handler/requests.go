package handler

// RegisterRequest is the JSON body for POST /lnaddress/register.
type RegisterRequest struct {
	Domain      string `json:"domain"`
	Username    string `json:"username"`
	Destination string `json:"destination"`
}

// RemoveRequest is the JSON body for DELETE /lnaddress/remove.
type RemoveRequest struct {
	Domain              string `json:"domain"`
	Username            string `json:"username"`
	AuthenticationToken string `json:"authentication_token"`
}

// DestinationResponse is the JSON shape for a resolved address lookup.
type DestinationResponse struct {
	Destination string `json:"destination"`
	URL         string `json:"url"`
}
