package models

type ReplyType string

const (
	ReplyTypeFAQ           ReplyType = "faq"
	ReplyTypeGenerated     ReplyType = "generated"
	ReplyTypeDegraded      ReplyType = "degraded"
	ReplyTypeNoInformation ReplyType = "no_information"
)

// Reply is the assembled answer for one chat request.
type Reply struct {
	Text          string
	Language      string
	Confidence    float64
	Sources       []Source
	TopicsCovered []string
	Type          ReplyType
}
