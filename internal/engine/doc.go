// Package engine builds task trees from descriptions and executes them.
//
// Build and Run are independent: Build only depends on the
// description shapes in pkg/api, and Run only on the node shapes. Neither
// logs; progress reporting belongs to observers attached to leaves.
package engine
