// Package logger provides leveled, colored logging for vctool commands.
//
// # Verbosity Levels
//
//   - --verbose: shows info and warning messages
//   - --debug: shows everything, including debug details and errors as
//     they are returned
//
// Without flags only critical warnings are printed; errors reach the user
// through the command's return value instead.
//
// # Log Methods
//
//	Logger.Infof()          // Shown with --verbose or --debug
//	Logger.Debugf()         // Shown only with --debug
//	Logger.Warnf()          // Shown with --verbose or --debug
//	Logger.WarnfAlways()    // Always shown
//	Logger.Errorf()         // Shown with --debug
//	Logger.ErrorfAndReturn() // Errorf, then returns the message as an error
//
// The root command builds its Logger in PersistentPreRun from the flags.
package logger
