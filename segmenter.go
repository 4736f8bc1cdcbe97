package videocourse

// ChunkSize is the elapsed time, in seconds, after which a new module starts
const ChunkSize = 600

// TitleFunc names a module from its space-joined transcript text
type TitleFunc func(text string) string

// SegmentTranscript splits an ordered transcript into contiguous modules.
// A segment joins the current module while its start lies less than
// ChunkSize seconds after the module's start; otherwise the module is closed,
// titled and emitted, and the segment seeds the next one. Only start offsets
// are compared, so a module can run past ChunkSize by its trailing segments.
func SegmentTranscript(transcript []TranscriptSegment, title TitleFunc) []Module {
	modules := make([]Module, 0)
	var current *Module

	closeModule := func() {
		current.EndTime = current.Content[len(current.Content)-1].End
		current.Title = title(current.Text())
		modules = append(modules, *current)
		VerboseLog("Closed module %d %q (%.1fs-%.1fs, %d segments)",
			len(modules), current.Title, current.StartTime, current.EndTime, len(current.Content))
	}

	for _, seg := range transcript {
		switch {
		case current == nil:
			current = &Module{StartTime: seg.Start}
			current.Content = append(current.Content, seg)
		case seg.Start-current.StartTime < ChunkSize:
			current.Content = append(current.Content, seg)
		default:
			closeModule()
			current = &Module{StartTime: seg.Start}
			current.Content = append(current.Content, seg)
		}
	}

	if current != nil && len(current.Content) > 0 {
		closeModule()
	}

	return modules
}
