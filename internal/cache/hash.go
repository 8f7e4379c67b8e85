package cache

import (
	"os"
	"sync"

	md5simd "github.com/minio/md5-simd"
)

// hashServer is a single process-wide md5-simd server; spinning up a new
// one per hash would defeat the point of its internal batching, so one
// instance is shared across every Store in the process, matching the way
// minio's own clients hold a single long-lived server.
var (
	hashServer     md5simd.Server
	hashServerOnce sync.Once
)

func server() md5simd.Server {
	hashServerOnce.Do(func() {
		hashServer = md5simd.NewServer()
	})
	return hashServer
}

// hashBytes computes the 128-bit content hash of b. MD5 is cryptographically
// broken but that is irrelevant here: spec.md §4.3 explicitly allows "any
// cryptographically weak but fast content hash" since the hash only gates
// correctness-against-change, never security.
func hashBytes(chunks ...[]byte) [16]byte {
	h := server().NewHash()
	defer h.Close()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hashFile computes the content hash of the file at path.
func hashFile(path string) ([16]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [16]byte{}, err
	}
	return hashBytes(data), nil
}
