package logging

import "log/slog"

// Attribute keys shared by every package that logs about schemas and
// documents. [Handler] renders them as a subject prefix.
const (
	KeySchema   = "schema"
	KeyVersion  = "version"
	KeyDocument = "document"
	KeyURI      = "uri"
)

// URI returns the attribute for a schema document URI.
func URI(uri string) slog.Attr {
	return slog.String(KeyURI, uri)
}

// Document returns the attribute for an input document path.
func Document(path string) slog.Attr {
	return slog.String(KeyDocument, path)
}

// WithSchema returns logger annotated with a schema name and version.
// Empty values are omitted.
func WithSchema(logger *slog.Logger, name, version string) *slog.Logger {
	var args []any
	if name != "" {
		args = append(args, slog.String(KeySchema, name))
	}
	if version != "" {
		args = append(args, slog.String(KeyVersion, version))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}

// WithDocument returns logger annotated with an input document path.
func WithDocument(logger *slog.Logger, path string) *slog.Logger {
	return logger.With(Document(path))
}
