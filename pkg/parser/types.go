package parser

type Template string

const (
	TemplateReceived   = Template("received")
	TemplateSent       = Template("sent")
	TemplateAirtime    = Template("airtime")
	TemplatePayment    = Template("payment")
	TemplateWithdrawal = Template("withdrawal")
	TemplateUnknown    = Template("unknown")
)

// RawRecord holds the as-extracted fields of a single SMS entry. Amount and
// timestamp stay unparsed strings until the normalizer accepts them.
type RawRecord struct {
	Seq           int
	Timestamp     string
	Body          string
	TypeHint      string
	Template      Template
	Amount        string
	Sender        string
	Receiver      string
	ReferenceCode string
}

// DeadRecord is an entry which failed structural extraction. The original
// fragment is preserved for diagnosis.
type DeadRecord struct {
	Fragment string
	Field    string
	Reason   string
}
