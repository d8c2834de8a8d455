// Package codec converts versioned state envelopes to and from the
// transportable string written to storage. The default implementation is a
// JSON codec hardened against prototype-pollution style payloads; richer
// codecs (typed values, compression) are optional capabilities obtained
// through an explicit lazy Loader.
package codec

// Envelope is the only on-disk shape: the persisted slice of application
// state wrapped with the schema version that produced it. The version is
// assigned by the owning configuration, never inferred from content.
type Envelope struct {
	Version int            `json:"version"`
	State   map[string]any `json:"state"`
}

// Codec encodes envelopes to strings and back. Encode and Decode failures
// surface as errors, never as silently empty results; callers decide whether
// to clear the offending record.
type Codec interface {
	Encode(Envelope) (string, error)
	Decode(string) (Envelope, error)
}
