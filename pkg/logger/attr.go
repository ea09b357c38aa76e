package logger

import "log/slog"

const emailKey = "email"

// optional returns an empty Attr for empty values, which slog drops.
func optional(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}

func UserID(id string) slog.Attr      { return optional("user_id", id) }
func AccountID(id string) slog.Attr   { return optional("account_id", id) }
func FileID(id string) slog.Attr      { return optional("file_id", id) }
func RequestID(id string) slog.Attr   { return optional("request_id", id) }
func Email(email string) slog.Attr    { return optional(emailKey, email) }
func Component(name string) slog.Attr { return slog.String("component", name) }
func Event(name string) slog.Attr     { return slog.String("event", name) }

// TaskID accepts uuid.UUID or string ids.
func TaskID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("task_id", id)
}

func RetryCount(n int) slog.Attr {
	return slog.Int("retry_count", n)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Error is empty for a nil err.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}
