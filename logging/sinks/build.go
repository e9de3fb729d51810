package sinks

import (
	"io"
	"os"

	"github.com/samber/oops"

	"voxelfront/server/logging"
)

// Build opens every sink enabled in cfg. Console output goes to stdout.
func Build(cfg logging.Config, stdout io.Writer) ([]logging.NamedSink, error) {
	var named []logging.NamedSink
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{Name: name, Sink: NewConsole(stdout)})
		case "json":
			if cfg.JSON.FilePath == "" {
				named = append(named, logging.NamedSink{Name: name, Sink: NewJSON(stdout, cfg.JSON.FlushInterval)})
				continue
			}
			file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, oops.Code("LOG_SINK_OPEN").
					With("path", cfg.JSON.FilePath).
					Wrapf(err, "open json log sink")
			}
			sink := NewJSON(file, cfg.JSON.FlushInterval)
			sink.closer = file
			named = append(named, logging.NamedSink{Name: name, Sink: sink})
		case "memory":
			named = append(named, logging.NamedSink{Name: name, Sink: NewMemory()})
		default:
			return nil, oops.Code("LOG_SINK_UNKNOWN").
				With("sink", name).
				Errorf("unknown log sink %q", name)
		}
	}
	return named, nil
}
