package persist

import "github.com/goliatone/go-persist/internal/paths"

// Merger combines the persisted candidate state with the live state taken
// from the store at hydration time. Implementations must not mutate either
// input.
type Merger func(persisted, live map[string]any) map[string]any

// ShallowMerge is the default strategy: top-level keys from the persisted
// state win, everything else is kept from the live state.
func ShallowMerge(persisted, live map[string]any) map[string]any {
	if persisted == nil {
		return paths.Clone(live)
	}
	out := paths.Clone(live)
	if out == nil {
		out = map[string]any{}
	}
	for key, value := range paths.Clone(persisted) {
		out[key] = value
	}
	return out
}

// DeepMerge recursively merges nested plain maps, with persisted values
// winning per key. Slices and scalars are treated as atomic replacements,
// never merged element-wise.
func DeepMerge(persisted, live map[string]any) map[string]any {
	if persisted == nil {
		return paths.Clone(live)
	}
	return deepMerge(paths.Clone(persisted), paths.Clone(live))
}

func deepMerge(strong, weak map[string]any) map[string]any {
	if weak == nil {
		if strong == nil {
			return map[string]any{}
		}
		return strong
	}
	out := weak
	for key, strongValue := range strong {
		strongMap, strongIsMap := strongValue.(map[string]any)
		weakMap, weakIsMap := out[key].(map[string]any)
		if strongIsMap && weakIsMap {
			out[key] = deepMerge(strongMap, weakMap)
			continue
		}
		out[key] = strongValue
	}
	return out
}
