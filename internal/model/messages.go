package model

// PendingMessages returns the catalog messages to display to a manager
// running appVersion: those whose version range matches and that were
// either never shown or are marked to show always. The state is not
// modified; call MarkMessagesShown once they are displayed. Messages without
// a range are shown to every build, including those whose version does not
// parse.
func (s *State) PendingMessages(meta *Metadata, appVersion string) []Message {
	if meta == nil {
		return nil
	}
	var out []Message
	for _, msg := range meta.Messages {
		if !MatchesRange(appVersion, msg.Version) {
			continue
		}
		if msg.ShowAlways || !s.MessageShown(msg.ID) {
			out = append(out, msg)
		}
	}
	return out
}
