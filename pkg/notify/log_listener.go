package notify

import (
	"github.com/nainya/revstore/internal/logger"
)

// LogListener writes every event to the structured log. It is the minimum
// listener a deployment carries.
type LogListener struct {
	log *logger.Logger
}

// NewLogListener builds a listener over the given logger.
func NewLogListener(log *logger.Logger) *LogListener {
	if log == nil {
		log = logger.Nop()
	}
	return &LogListener{log: log}
}

// Name implements Listener.
func (l *LogListener) Name() string {
	return "log"
}

// OnEvent implements Listener.
func (l *LogListener) OnEvent(ev Event) {
	switch ev.Kind {
	case KindVersionCreated:
		l.log.Info("Version created").
			Str("document_id", ev.DocumentID).
			Str("version_id", ev.VersionID).
			Str("version", ev.Version).
			Msg("notification")
	case KindBranchCreated:
		l.log.Info("Branch created").
			Str("document_id", ev.DocumentID).
			Str("branch_id", ev.BranchID).
			Str("branch", ev.BranchName).
			Msg("notification")
	case KindVersionsMerged:
		l.log.Info("Versions merged").
			Str("document_id", ev.DocumentID).
			Str("merged", ev.Merged).
			Str("source", ev.Source).
			Str("target", ev.Target).
			Msg("notification")
	default:
		l.log.Debug("Unknown event").
			Str("kind", string(ev.Kind)).
			Msg("notification")
	}
}
