// Package sndfile measures durations with libsndfile. Its implementation is
// compiled only with the sndfile build tag (and cgo), where it registers
// itself as the "libsndfile" backend; otherwise only Name is defined.
package sndfile

// Name is the registry name and error prefix of this backend.
const Name = "libsndfile"
