package csvio

// RowBuilder receives the values of one row as it is tokenized. The
// reader calls StartRow, then Add once per field in order, then EndRow.
// Rows are not retained by the reader after EndRow returns.
type RowBuilder interface {
	StartRow()
	Add(value string)
	EndRow()
}

// SliceRowBuilder collects the fields of the last row into a slice.
type SliceRowBuilder struct {
	values []string
}

func NewSliceRowBuilder() *SliceRowBuilder {
	return new(SliceRowBuilder)
}

func (b *SliceRowBuilder) StartRow() {
	b.values = nil
}

func (b *SliceRowBuilder) Add(value string) {
	b.values = append(b.values, value)
}

func (b *SliceRowBuilder) EndRow() {}

// Values returns the fields collected since the last StartRow.
func (b *SliceRowBuilder) Values() []string {
	return b.values
}

// nopRowBuilder discards all values. Used by SkipRows.
type nopRowBuilder struct{}

func (nopRowBuilder) StartRow()  {}
func (nopRowBuilder) Add(string) {}
func (nopRowBuilder) EndRow()    {}
