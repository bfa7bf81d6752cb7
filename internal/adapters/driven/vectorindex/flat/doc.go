// Package flat provides an exact nearest-neighbour vector index.
//
// Search scans every vector and ranks by squared Euclidean distance, the
// same ordering as an L2 flat index. The index and its identifier map are
// persisted as two binary files in the data directory:
//
//	vectors.idx  magic "KAVX", version, dimension, count, generation,
//	             model name, then count*dimension little-endian float32s
//	idmap.bin    magic "KAID", version, generation, count, then
//	             length-prefixed chunk identifiers
//
// Both files are replaced atomically (write to a temp file, fsync, rename)
// so a concurrent reader sees either the previous or the next file, never
// a partial one. The shared generation counter lets readers detect a pair
// that was observed between the two renames.
package flat
