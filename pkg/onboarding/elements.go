package onboarding

import (
	"fmt"

	"github.com/entrhq/onboard/pkg/seed"
)

// ElementID is the test id the extension UI exposes for an interactive element.
// The set below is the automation contract with one extension release; when the
// UI changes, interactions fail with *ElementInteractionError instead of being
// tolerated.
type ElementID string

// ContractVersion is the extension release the element ids were taken from.
const ContractVersion = "12.9.3"

const (
	ElementTermsCheckbox   ElementID = "onboarding-terms-checkbox"
	ElementImportWallet    ElementID = "onboarding-import-wallet"
	ElementMetricsNoThanks ElementID = "metametrics-no-thanks"
	ElementSeedConfirm     ElementID = "import-srp-confirm"
	ElementPasswordNew     ElementID = "create-password-new"
	ElementPasswordConfirm ElementID = "create-password-confirm"
	ElementPasswordTerms   ElementID = "create-password-terms"
	ElementPasswordImport  ElementID = "create-password-import"
	ElementOnboardingDone  ElementID = "onboarding-complete-done"
	ElementPinNext         ElementID = "pin-extension-next"
	ElementPinDone         ElementID = "pin-extension-done"
)

// seedWordPrefix is completed with the zero-based word index.
const seedWordPrefix = "import-srp__srp-word-"

// SeedWordElement returns the input bound to word index i of the recovery phrase.
func SeedWordElement(i int) (ElementID, error) {
	if i < 0 || i >= seed.PhraseLength {
		return "", fmt.Errorf("seed word index %d out of range [0,%d)", i, seed.PhraseLength)
	}
	return ElementID(fmt.Sprintf("%s%d", seedWordPrefix, i)), nil
}

// KnownElements is the closed set of ids a Plan may reference.
var KnownElements = func() map[ElementID]struct{} {
	known := map[ElementID]struct{}{}
	for _, id := range []ElementID{
		ElementTermsCheckbox,
		ElementImportWallet,
		ElementMetricsNoThanks,
		ElementSeedConfirm,
		ElementPasswordNew,
		ElementPasswordConfirm,
		ElementPasswordTerms,
		ElementPasswordImport,
		ElementOnboardingDone,
		ElementPinNext,
		ElementPinDone,
	} {
		known[id] = struct{}{}
	}
	for i := 0; i < seed.PhraseLength; i++ {
		known[ElementID(fmt.Sprintf("%s%d", seedWordPrefix, i))] = struct{}{}
	}
	return known
}()

// IsKnown reports whether id belongs to the element contract.
func (id ElementID) IsKnown() bool {
	_, ok := KnownElements[id]
	return ok
}
