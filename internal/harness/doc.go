// Package harness provides scenario-driven conformance testing for the
// due-date derivation rules.
//
// Scenarios are YAML files describing an order, a pinned "today", a
// sequence of planning steps and the expected schedule. The harness
// replays the steps through a real planning session and validates the
// resulting schedule, which is also snapshotted for golden comparison.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	order:
//	  id: 7
//	  name: "DC13 main release"
//	  del_order_a: w2104
//	  engines: [DC07, DC09]
//	today: 2021-01-10
//	steps:
//	  - op: set_meeting
//	    date: 2021-06-07
//	  - op: set_date
//	    task: 10
//	    date: 2021-01-01
//	  - op: clear_date
//	    task: 10
//	  - op: check
//	    task: 4
//	expect:
//	  - task: 1
//	    date: 2021-01-29
//	  - task: 2
//	    absent: true
//
// # Deterministic Testing
//
// Every scenario runs with a pinned clock (scenario "today") and a
// fixed submission-token generator, so repeated runs produce identical
// schedules and golden snapshots never churn.
package harness
