package io

import (
	"crypto/md5"
	"hash"
	"io"
)

// ChecksumReader is a reader which digests everything it has read so far.
type ChecksumReader interface {
	io.Reader

	// Sum returns the checksum of the bytes read to this point.
	Sum() []byte
}

type md5Reader struct {
	source io.Reader
	hash   hash.Hash
}

// NewMD5Reader wraps source so that the MD5 of the consumed bytes can be
// asked for at any time.
func NewMD5Reader(source io.Reader) ChecksumReader {
	return &md5Reader{source: source, hash: md5.New()}
}

func (mr *md5Reader) Read(p []byte) (int, error) {
	n, err := mr.source.Read(p)
	if 0 < n {
		mr.hash.Write(p[:n])
	}
	return n, err
}

func (mr *md5Reader) Sum() []byte {
	return mr.hash.Sum(nil)
}
