// Package domain models body-composition measurements exported by smart
// scales and the normalization and sampling rules applied to them.
//
// # Data Source
//
// Scale companion apps export every weigh-in as one CSV row. The first line
// names the columns; at minimum "time" and "weight" are present, usually
// "height" and "bmi" as well, followed by vendor-specific columns (fat rate,
// body water, bone mass, impedance, ...) which are carried through untouched.
//
// # Export Conventions
//
// Delimiters:
//
//	Plain commas, no quoting. A comma inside a value shifts every later
//	column; this is accepted rather than guessed around. Use strict mode to
//	reject rows whose field count differs from the header.
//
// Line endings:
//
//	Exports produced on Windows end lines with "\r\n". Lines are split on
//	"\n" only, so the last header ("bmi\r") and the last value of each row
//	keep a trailing carriage return. Because column dispatch is by exact
//	name, such a column is passed through as text; [Sanitize] strips the
//	carriage returns before anything is written. Consumers that need the
//	number use [Record.Number], which parses numeric strings.
//
// Time format:
//
//	ISO-8601 instants, usually "2024-05-01T23:30:00Z" or with an explicit
//	offset. Offset-less values are taken as UTC. Every timestamp is rendered
//	in the fixed UTC+8 zone as "YYYY-MM-DD HH:MM:SS" (see [CanonicalLayout]).
//
// Numeric columns:
//
//	weight, height and bmi are parsed by their leading decimal literal
//	("70.5kg" is 70.5). Anything without one becomes NaN, encoded as JSON
//	null on output.
//
// # Daily Sampling
//
// A morning weigh-in is the most comparable reading of a day. Records whose
// hour lies in [07:00, 09:00) are grouped by calendar date and the lightest
// one is kept. Ties go to the earliest record in input order; NaN weights
// sort after every number. See [SampleWith].
package domain
