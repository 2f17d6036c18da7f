// Package core provides the business logic for match ingestion and game
// selection.
//
// This package is independent of any transport or storage engine. Storage is
// reached through [Repository] and [HeaderStore]; HTTP handlers, tests and
// tools all go through [Service].
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Key normalization: [NormalizeKey] turns display labels such as
//     "Média Gols" into canonical keys ("media_gols").
//   - Date normalization: [NormalizeDate] accepts ISO, day-first and US dates
//     and returns YYYY-MM-DD.
//   - CSV parsing: [ParseCSV] splits pasted text, sniffs for a header line and
//     builds ordered raw and normalized [Fields] per row.
//   - Game store: [GameStore] replaces the stored game set atomically and
//     records the header labels of the last ingestion.
//   - Selection: [SelectionUpdater] applies batches of selection changes in
//     one transaction.
//
// # Ingestion
//
// The flow for [Service.Ingest] is:
//
//  1. The match date hint is normalized (blank means no default)
//  2. Text is split into non-blank lines and the header is detected
//  3. The header and rows are validated
//  4. Every row is resolved to a [GameInput]
//  5. The repository deletes all games and inserts the new set in one
//     transaction
//  6. The header labels are saved through the [HeaderStore]
//
// # Errors
//
// Every caller-facing failure is an [*Error]. Its [Kind] tells the
// transport how to classify it, its [Code] names the rule that fired and its
// Message is ready to show to the user. Use [MapError] to add the suggested
// action and support code.
package core
