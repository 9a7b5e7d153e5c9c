// Package staging manages the output directory and the per-part scratch
// directories that hold frame files and intermediate segments while a part is
// being built.
//
// The output directory is reset once per build. Each part gets a hidden
// .scratch-NNN subdirectory that is removed on every exit path; CleanOrphaned
// removes scratch directories an interrupted run left behind.
package staging
