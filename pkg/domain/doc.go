/*
Package domain contains the core domain models of the form dialogue.

It defines the entities the state machine works on and is kept free of I/O,
persistence and transport concerns.

# Key Entities

  - Catalog: the ordered, immutable list of fields to collect.
  - Session: the mutable progress of one in-flight form (cursor + answers).
  - StepResult: what a single turn produced, either the next prompt or the finished record.
  - Record: the ordered field name to answer mapping handed off on completion.
*/
package domain
