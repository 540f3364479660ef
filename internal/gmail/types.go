// Package gmail holds the provider data model and the narrow client surface
// the rest of gmailpack depends on.
package gmail

type Header struct {
	Name  string
	Value string
}

// PartBody is the body of a MIME part. Data is base64 (URL alphabet as served
// by the API) and is empty for attachments that must be fetched separately.
type PartBody struct {
	AttachmentID string
	Size         int64
	Data         string
}

// Part is one node of a message's MIME tree. Leaf parts carry a Body;
// container parts (multipart/*) carry Parts.
type Part struct {
	PartID   string
	Filename string
	MimeType string
	Headers  []Header
	Body     *PartBody
	Parts    []*Part
}

type Message struct {
	ID           string
	ThreadID     string
	LabelIDs     []string
	Snippet      string
	HistoryID    uint64
	InternalDate int64
	SizeEstimate int64
	Payload      *Part
}

type Thread struct {
	ID        string
	HistoryID uint64
	Messages  []Message
	Snippet   string
}

// MessageRef is the listing form of a message.
type MessageRef struct {
	ID       string
	ThreadID string
}

// ThreadRef is the listing form of a thread.
type ThreadRef struct {
	ID        string
	HistoryID uint64
	Snippet   string
}

type MessagePage struct {
	Messages           []MessageRef
	NextPageToken      string
	ResultSizeEstimate int64
}

type ThreadPage struct {
	Threads            []ThreadRef
	NextPageToken      string
	ResultSizeEstimate int64
}

// ListOptions are the parameters accepted by the listing endpoints. Query is
// sent as-is; callers translate host keywords before building it.
type ListOptions struct {
	Query            string
	PageToken        string
	MaxResults       int
	IncludeSpamTrash bool
}

type LabelColor struct {
	BackgroundColor string
	TextColor       string
}

type Label struct {
	ID                    string
	Name                  string
	Type                  string // "system" or "user"
	LabelListVisibility   string
	MessageListVisibility string
	MessagesTotal         int64
	MessagesUnread        int64
	ThreadsTotal          int64
	ThreadsUnread         int64
	Color                 *LabelColor
}

type Profile struct {
	EmailAddress  string
	MessagesTotal int64
	ThreadsTotal  int64
	HistoryID     uint64
}

type Draft struct {
	ID      string
	Message MessageRef
}

// LabelNames builds the id -> name lookup used to annotate messages.
func LabelNames(labels []Label) map[string]string {
	out := make(map[string]string, len(labels))
	for _, l := range labels {
		out[l.ID] = l.Name
	}
	return out
}
