// Package harness runs scripted render sessions and checks their outcome.
//
// # Scenario Format
//
// Scenarios are YAML files with an inline chart document and a list of
// steps applied to a Transport driven by a manual clock:
//
//	name: perfect_run
//	description: "Both notes pressed on time"
//	session: test-session-0001
//	difficulty: normal
//	config:
//	  render_delay: 1
//	chart:
//	  title: Basic
//	  bpm: 120
//	  difficulties:
//	    normal:
//	      notes:
//	        - { id: 1, position: 1, lane: 1 }
//	steps:
//	  - tick: 1
//	  - advance: 4
//	  - press: 1
//	  - judge: { id: 1, accuracy: great }
//	  - pause: true
//	  - resume: true
//	expect:
//	  score: 1000
//	  hits: { perfect: 1 }
//	  completed: true
//
// Each step performs exactly one action. advance moves the clock in
// seconds without ticking; tick runs that many ticks. press judges the
// front note of a lane against the live position, judge commits an
// explicit accuracy for an event id. Notes that slip past every window are
// judged miss by the harness host.
//
// An optional profile block overrides the built-in judgment windows and
// scoring tables, using the same fields as a profile file.
//
// # Deterministic Testing
//
// The clock starts at 0 and only moves on advance steps, the session id is
// fixed (scenario.session or testutil.DefaultSessionID), and floats in the
// trace are rounded to microseconds. The same scenario therefore always
// produces byte-identical traces for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/perfect_run.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
