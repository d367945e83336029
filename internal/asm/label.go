package asm

// Label records where a name was defined within a file's item stream: the
// section it lives in and the index of the first item after it, mirroring
// original_source's LabelData{line_number, data_index, section, global}.
type Label struct {
	Name    string
	DefLine int
	Index   int
	Global  bool
	Section Section
}
