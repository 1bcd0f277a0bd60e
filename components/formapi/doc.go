// Package formapi exposes content forms over net/http. Each session wraps one
// live form; JSON routes drive it operation by operation and the HTML route
// renders it as a server-driven modal that posts its intents back.
//
// Routes are relative to the mount path (default /api/contentforms):
//
//	GET    /forms                                 list declared forms
//	GET    /forms/{form}                          form schema
//	GET    /forms/{form}/payload-schema           JSON schema of the submission
//	POST   /forms/{form}/sessions                 open a session
//	GET    /openapi.json                          API description
//	GET    /sessions/{id}                         snapshot
//	DELETE /sessions/{id}                         dispose the session
//	POST   /sessions/{id}/open                    reopen a closed form
//	PUT    /sessions/{id}/fields/{field}          set a record field
//	PUT    /sessions/{id}/lists/{list}/staging    stage list inputs
//	POST   /sessions/{id}/lists/{list}/items      add the staged item
//	DELETE /sessions/{id}/lists/{list}/items/{i}  remove an item
//	POST   /sessions/{id}/lists/{list}/keydown    route a key press
//	PUT    /sessions/{id}/subject                 set the quick-fill subject
//	POST   /sessions/{id}/quickfill               start a quick-fill
//	POST   /sessions/{id}/quickfill/retry         retry a failed quick-fill
//	GET    /sessions/{id}/quickfill/wait          wait for the pending quick-fill
//	POST   /sessions/{id}/submit                  submit (422 on validation errors)
//	POST   /sessions/{id}/cancel                  cancel
//	GET    /sessions/{id}/html                    render the modal
//	POST   /sessions/{id}/html                    apply posted values and an intent
package formapi
