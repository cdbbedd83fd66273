package entity

// CallbackParams holds the query parameters LinkedIn sends to the callback.
// Empty means absent.
type CallbackParams struct {
	Code  string `json:"code,omitempty"`
	State string `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}

// ClientClassification describes who is following the redirect.
type ClientClassification struct {
	IsWeb   bool   `json:"is_web"`
	Referer string `json:"referer,omitempty"`
}

type CallbackOutcomeKind int

const (
	// OutcomeRedirect sends the caller straight to Target.
	OutcomeRedirect CallbackOutcomeKind = iota
	// OutcomeWebPage renders an HTML page that redirects to Target client side.
	OutcomeWebPage
	// OutcomeMissingCode renders the diagnostic page.
	OutcomeMissingCode
)

func (k CallbackOutcomeKind) String() string {
	switch k {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeWebPage:
		return "web_page"
	case OutcomeMissingCode:
		return "missing_code"
	default:
		return "unknown"
	}
}

// CallbackOutcome is the result of resolving a LinkedIn callback.
type CallbackOutcome struct {
	Kind   CallbackOutcomeKind
	Target string
	// ReturnURL is the app link offered on the diagnostic page.
	ReturnURL string
	Params    CallbackParams
	Client    ClientClassification
}
