// Package inspect reads converter output back and summarizes it.
//
// Only the compact JSON form (one document per line) is supported.
package inspect
