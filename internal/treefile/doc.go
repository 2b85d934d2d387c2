// Package treefile loads task tree descriptions from YAML, JSON and HCL
// files whose leaves are shell commands.
//
// YAML and JSON files use the generic description shape:
//
//	kind: queue
//	name: release
//	tasks:
//	  - run: npm ci
//	  - kind: parallel
//	    tasks:
//	      - run: npm run build
//	        dir: web
//	      - "make docs"
//
// A leaf is either a bare command string or a mapping with "run" and the
// optional "name", "dir" and "args" keys.
//
// HCL files hold a single queue or parallel block. Groups nest as blocks
// and leaves are run blocks; blocks run in the order they are written.
// Expressions can read variables through env:
//
//	queue "release" {
//	  run "install" {
//	    command = "npm ci"
//	  }
//	  parallel {
//	    run {
//	      command = "npm run build"
//	      dir     = env.WEB_DIR
//	    }
//	    run {
//	      command = "make"
//	      args    = ["docs"]
//	    }
//	  }
//	}
package treefile
