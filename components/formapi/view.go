package formapi

import (
	"time"

	"github.com/goliatone/go-contentforms/pkg/form"
)

// sessionView is the JSON shape of a session snapshot.
type sessionView struct {
	ID        string                       `json:"id"`
	Form      string                       `json:"form"`
	CreatedAt time.Time                    `json:"createdAt"`
	Open      bool                         `json:"open"`
	Record    map[string]string            `json:"record"`
	Lists     map[string][]form.Item       `json:"lists"`
	Staging   map[string]map[string]string `json:"staging"`
	Subject   string                       `json:"subject"`
	Fill      form.FillState               `json:"fill"`
	FillError string                       `json:"fillError,omitempty"`
	Revision  uint64                       `json:"revision"`
	Payload   form.Payload                 `json:"payload"`
}

func newSessionView(entry *session) sessionView {
	snap := entry.form.Snapshot()
	lists := make(map[string][]form.Item, len(snap.Schema.Lists))
	for _, list := range snap.Schema.Lists {
		items := snap.Lists[list.Name]
		if items == nil {
			items = []form.Item{}
		}
		lists[list.Name] = items
	}
	view := sessionView{
		ID:        entry.id,
		Form:      entry.formID,
		CreatedAt: entry.created,
		Open:      snap.Open,
		Record:    snap.Record.Map(),
		Lists:     lists,
		Staging:   snap.Staging,
		Subject:   snap.Subject,
		Fill:      snap.Fill,
		Revision:  snap.Revision,
		Payload:   snap.Payload(),
	}
	if snap.FillErr != nil {
		view.FillError = snap.FillErr.Error()
	}
	return view
}
