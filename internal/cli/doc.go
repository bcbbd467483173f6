// Package cli holds terminal helpers shared by the oauthcli commands:
// plain aligned tables, progress spinners, yes/no prompts and errors that
// tell the user which command to run next.
package cli
