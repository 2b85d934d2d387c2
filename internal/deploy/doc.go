// Package deploy plans a Vercel release of one or more directories as a
// task tree.
//
// The plan runs in stages. Every stage is a parallel group over the
// targets, and stages follow each other in a queue:
//
//  1. write the empty local Vercel config
//  2. vc link each target
//  3. vc build each target
//  4. run the user commands of userCommands targets, then copy their
//     output into .vercel/output/static
//  5. vc deploy each target, then alias the deployment to its URLs
//
// A failure in a stage stops later stages. Targets within a stage run
// concurrently and the stage waits for all of them.
package deploy
