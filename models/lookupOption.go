package models

// NoneId is the selection value meaning "nothing selected" in every lookup list.
const NoneId = -1

type Option struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

// withNone prepends the "none" entry.
func withNone(options []Option) []Option {
	result := make([]Option, 0, len(options)+1)
	result = append(result, Option{Id: NoneId, Name: "none"})
	return append(result, options...)
}

// OptionRef turns a selection into a nullable foreign key: nil, NoneId and 0 all mean none.
func OptionRef(selected *int) *int {
	if selected == nil || *selected <= 0 {
		return nil
	}
	id := *selected
	return &id
}

// OptionId turns a nullable foreign key into a selection value.
func OptionId(ref *int) int {
	if ref == nil {
		return NoneId
	}
	return *ref
}

func namedOptions[T interface{ option() Option }](rows []*T) []Option {
	options := make([]Option, 0, len(rows))
	for _, row := range rows {
		options = append(options, (*row).option())
	}
	return withNone(options)
}
