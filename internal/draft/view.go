package draft

// View is the JSON projection of a draft handed to clients.
type View struct {
	Handle          string   `json:"id"`
	PostID          string   `json:"post_id,omitempty"`
	Mode            Mode     `json:"mode"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	Tags            []string `json:"tags"`
	PendingTag      string   `json:"pending_tag"`
	TagLimitReached bool     `json:"tag_limit_reached"`
}

// View projects the draft; handle is the editing-session identifier the
// caller addresses it by.
func (d *Draft) View(handle string) View {
	return View{
		Handle:          handle,
		PostID:          d.id,
		Mode:            d.mode,
		Title:           d.title,
		Body:            d.body,
		Tags:            d.Tags(),
		PendingTag:      d.pendingTag,
		TagLimitReached: d.TagLimitReached(),
	}
}
