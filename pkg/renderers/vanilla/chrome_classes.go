package vanilla

// ChromeClass is a semantic CSS class applied to the modal chrome.
type ChromeClass string

const (
	ClassDialog    ChromeClass = "cf-dialog"
	ClassForm      ChromeClass = "cf-form"
	ClassHeader    ChromeClass = "cf-header"
	ClassQuickFill ChromeClass = "cf-quickfill"
	ClassFields    ChromeClass = "cf-fields"
	ClassActions   ChromeClass = "cf-actions"
	ClassErrors    ChromeClass = "cf-errors"
)

var chromeSlots = map[string]ChromeClass{
	"dialog":    ClassDialog,
	"form":      ClassForm,
	"header":    ClassHeader,
	"quickfill": ClassQuickFill,
	"fields":    ClassFields,
	"actions":   ClassActions,
	"errors":    ClassErrors,
}

// chromeClasses returns the class attribute per slot, appending caller
// supplied utility classes to the semantic one.
func chromeClasses(extra map[string]string) map[string]string {
	out := make(map[string]string, len(chromeSlots))
	for slot, class := range chromeSlots {
		out[slot] = string(class)
		if more := sanitizeClassList(extra[slot]); more != "" {
			out[slot] += " " + more
		}
	}
	return out
}
