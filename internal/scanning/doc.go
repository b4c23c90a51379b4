// Package scanning runs the external scanning tool for the scan cycle.
//
// Each invocation is one child process,
//
//	nmap <mode> -oN <output_dir>/scan_<mode>_<YYYYMMDD_HHMMSS>.txt <target>
//
// whose normal-format output file is the durable record. Results are not
// parsed; the invoker only reports whether the tool exited 0, returning an
// Artifact that the scheduler formats into a status line.
//
// # Artifact names
//
// ArtifactPath strips leading dashes from the mode flag, so -sS becomes
// scan_sS_20240102_150405.txt and -p- becomes scan_p-_20240102_150405.txt.
// When the same mode runs twice within one second the second artifact gets a
// _2 suffix, then _3, and so on.
//
// # Tool resolution
//
// Preflight resolves the tool before a cycle starts so a missing binary is
// reported once instead of as a failure line for every mode.
package scanning
