// Package services implements the driving port interfaces.
//
// ExtractionService runs the adapters of one course, merges their items
// and builds the report. RunService and UploadService work on stored runs,
// and SettingsService resolves the effective settings from the config
// store and the environment.
package services
