package models

// WebKitRule represents a Safari/WebKit content blocker rule
type WebKitRule struct {
	Trigger WebKitTrigger `json:"trigger"`
	Action  WebKitAction  `json:"action"`
}

// WebKitTrigger defines when a rule should activate
type WebKitTrigger struct {
	URLFilter string   `json:"url-filter"`
	IfDomain  []string `json:"if-domain,omitempty"`
}

// WebKitAction defines what to do when a rule triggers
type WebKitAction struct {
	Type     string `json:"type"`               // css-display-none
	Selector string `json:"selector,omitempty"` // only for css-display-none
}

// ActionCSSDisplayNone hides elements matching the action selector
const ActionCSSDisplayNone = "css-display-none"
