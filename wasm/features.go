package wasm

import "fmt"

// Features is a bit-set of the post-MVP extensions the reader and validator
// accept. Unknown bits are ignored by the reader; the validator rejects
// constructs whose required feature is disabled.
type Features uint64

const (
	// FeatureMutableGlobals allows importing and exporting mutable globals.
	FeatureMutableGlobals Features = 1 << iota
	// FeatureMultiValue allows function types with more than one result and
	// block types referencing the type section.
	FeatureMultiValue
	// FeatureReferenceTypes enables externref, typed select, table
	// instructions and multiple tables.
	FeatureReferenceTypes
	// FeatureBulkMemory enables memory.init/copy/fill, data.drop, passive
	// segments and the data count section.
	FeatureBulkMemory
	// FeatureThreads enables shared memories and the 0xFE atomic opcodes.
	FeatureThreads
	// FeatureSIMD enables v128 and the 0xFD vector opcodes.
	FeatureSIMD
	// FeatureExceptions enables the event section and try/catch/throw.
	FeatureExceptions
	// FeatureTailCall enables return_call and return_call_indirect.
	FeatureTailCall
	// FeatureSignExtension enables the i32/i64 sign-extension opcodes.
	FeatureSignExtension
	// FeatureSaturatingFloatToInt enables the 0xFC trunc_sat opcodes.
	FeatureSaturatingFloatToInt
	// FeatureFunctionReferences enables typed function references.
	FeatureFunctionReferences
	// FeatureGC enables the garbage-collected reference types.
	FeatureGC
)

// FeaturesMVP has every extension disabled, matching WebAssembly 1.0.
const FeaturesMVP Features = 0

// FeaturesFinished enables the extensions that reached phase 4 or later:
// mutable globals, multi-value, reference types, bulk memory, sign extension
// and saturating float-to-int.
const FeaturesFinished = FeatureMutableGlobals | FeatureMultiValue |
	FeatureReferenceTypes | FeatureBulkMemory | FeatureSignExtension |
	FeatureSaturatingFloatToInt

// IsEnabled returns true if every feature in the argument is enabled.
func (f Features) IsEnabled(feature Features) bool {
	return f&feature == feature
}

// RequireEnabled returns an error naming the feature when it is disabled.
func (f Features) RequireEnabled(feature Features) error {
	if f&feature != feature {
		return fmt.Errorf("feature %q is disabled", featureName(feature))
	}
	return nil
}

// Enable returns a copy of f with the feature turned on.
func (f Features) Enable(feature Features) Features {
	return f | feature
}

func featureName(f Features) string {
	switch f {
	case FeatureMutableGlobals:
		return "mutable-globals"
	case FeatureMultiValue:
		return "multi-value"
	case FeatureReferenceTypes:
		return "reference-types"
	case FeatureBulkMemory:
		return "bulk-memory-operations"
	case FeatureThreads:
		return "threads"
	case FeatureSIMD:
		return "simd"
	case FeatureExceptions:
		return "exceptions"
	case FeatureTailCall:
		return "tail-call"
	case FeatureSignExtension:
		return "sign-extension-ops"
	case FeatureSaturatingFloatToInt:
		return "nontrapping-float-to-int-conversion"
	case FeatureFunctionReferences:
		return "function-references"
	case FeatureGC:
		return "gc"
	}
	return "unknown"
}
