package auth

import "context"

type ctxKey string

const subjectKey ctxKey = "subject"

// WithSubject returns a copy of ctx carrying the authenticated username.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the authenticated username, if any. Anonymous
// requests report false.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}
