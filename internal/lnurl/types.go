package lnurl

// Tag discriminates the known LNURL response kinds.
type Tag string

const (
	TagPayRequest      Tag = "payRequest"
	TagWithdrawRequest Tag = "withdrawRequest"
	TagChannelRequest  Tag = "channelRequest"
)

// PayResponse is the LNURL-pay manifest a wallet needs before requesting an
// invoice.
type PayResponse struct {
	// Callback is the URL from LN SERVICE which will accept the pay request
	// parameters.
	Callback string `json:"callback"`

	// MaxSendable is the max amount LN SERVICE is willing to receive, in
	// millisatoshi.
	MaxSendable uint64 `json:"maxSendable"`

	// MinSendable is the min amount LN SERVICE is willing to receive, can
	// not be less than 1 or more than MaxSendable.
	MinSendable uint64 `json:"minSendable"`

	// Metadata json which must be presented as a raw string here, this is
	// required to pass signature verification at a later step.
	Metadata string `json:"metadata"`

	// CommentAllowed is the longest comment length the service accepts with
	// a payment, 0 if comments are not supported.
	CommentAllowed int64 `json:"commentAllowed,omitempty"`

	// Tag of the manifest, always "payRequest" for this shape.
	Tag Tag `json:"tag"`
}

// errEnvelope is the protocol-level error body a remote may answer with
// instead of a manifest.
type errEnvelope struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
