package entities

// DocumentEventKind distinguishes the two document change events.
type DocumentEventKind string

const (
	DocumentPublished DocumentEventKind = "published"
	DocumentUpdated   DocumentEventKind = "updated"
)

// SourceTagImport marks bulk imports, which never notify.
const SourceTagImport = "import"

// Event is the closed union of events the notifier decides on. Adding a
// variant forces every Process switch to handle it.
type Event interface {
	isEvent()
}

type DocumentChanged struct {
	DocumentID string
	Kind       DocumentEventKind
	SourceTag  string
}

func (DocumentChanged) isEvent() {}

type CollectionCreated struct {
	CollectionID string
}

func (CollectionCreated) isEvent() {}

// Label maps the document event kind onto its delivery-request label.
func (e DocumentChanged) Label() EventLabel {
	if e.Kind == DocumentPublished {
		return LabelPublished
	}
	return LabelUpdated
}

// SubscriptionKind maps the document event kind onto the subscription
// kind candidates must hold.
func (e DocumentChanged) SubscriptionKind() SubscriptionKind {
	if e.Kind == DocumentPublished {
		return SubscriptionDocumentPublish
	}
	return SubscriptionDocumentUpdate
}
