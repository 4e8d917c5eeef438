package helpers

// ID names one runtime-support helper of the catalog.
type ID uint8

const (
	Invalid ID = iota
	Decorate
	Metadata
	Param
	Assign
	Await
	AsyncGenerator
	AsyncDelegator
	AsyncValues
	Rest
	Awaiter
	Extends
	MakeTemplateObject
	Spread
	SpreadArrays
	Values
	Read
	Generator
	ImportStar
	ImportDefault
	AsyncSuper
	AdvancedAsyncSuper

	numIDs
)

func (id ID) IsValid() bool {
	return id > Invalid && id < numIDs
}

func (id ID) String() string {
	if !id.IsValid() {
		return "invalid"
	}
	return catalog[id].Name
}
