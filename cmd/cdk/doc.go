// Command cdk evaluates a dataset script and prints the objects it builds.
//
// Before the script runs, every archive directly inside the vendor directory
// is merged into one classpath; archives are taken in lexical order and the
// first archive providing an entry wins. Schema URIs of the form
// "resource:<entry>" must name an entry of that classpath. A missing vendor
// directory is logged and skipped, and resource URIs are then not checked.
//
// Usage:
//
//	cdk [-vendor dir] [-ext .jar] [-log-level info] [-log-format text] [-o yaml] SCRIPT
//
// Every flag defaults to its CDK_* environment variable (see internal/config).
// Built objects are written to stdout, logs to stderr. The exit code is 0 on
// success, 1 when the script cannot be loaded or built and 2 on usage errors.
package main
