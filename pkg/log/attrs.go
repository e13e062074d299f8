package log

import "log/slog"

func GraphID[T ~string](id T) slog.Attr {
	return slog.String("graph_id", string(id))
}

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func Node[T ~string](node T) slog.Attr {
	return slog.String("node", string(node))
}

func Tool[T ~string](name T) slog.Attr {
	return slog.String("tool", string(name))
}

func Step(step int) slog.Attr {
	return slog.Int("step", step)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
