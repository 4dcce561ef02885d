// Package main provides the entry point for grouproster, a command line
// tool that keeps users, groups and group memberships on a SQLite, MySQL or
// PostgreSQL database. Records pass through validation before they are
// stored, passwords are kept only as Argon2id digests and storage-level
// unique violations are reported as field errors.
package main
