// Package onboarding drives the first-run wizard of the wallet browser extension.
//
// The package owns the orchestration only. Browser processes, pages and element
// access are reached through the Session, Window and Launcher interfaces, which
// pkg/browser implements on top of Playwright and tests implement with fakes.
//
// # Components
//
//  1. WindowLocator: polls the open windows until one title contains the
//     extension's name, bounded by a timeout and the caller's context.
//  2. Interactor: waits for an element (addressed by its test id) to be attached,
//     then clicks or fills it. Failures come back as *ElementInteractionError.
//  3. Sequencer: builds the Plan, acquires the Session, walks the steps strictly
//     in order and always releases the Session exactly once.
//
// # Flow
//
//	NotStarted → LocatingWindow → AwaitingLoad → ExecutingSteps → Completed
//	                     any non-terminal state → Aborted(reason)
//
// The password block of the Plan is conditional: it runs completely when both
// password inputs are present and is skipped completely otherwise.
//
// # Example Usage
//
//	seq := onboarding.NewSequencer(launcher,
//	    onboarding.WithLogger(logger),
//	    onboarding.WithWindowTitle("MetaMask"),
//	)
//	res := seq.Run(ctx, onboarding.Input{Words: phrase.Words(), Password: pw})
//	if !res.Succeeded() {
//	    log.Printf("aborted: %s", res.State.Reason)
//	}
package onboarding
