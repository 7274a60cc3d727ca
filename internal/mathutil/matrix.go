package mathutil

// Mat is a row-major matrix. Transition tables are square Mats in the log
// domain, indexed [from][to].
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero. All rows share
// one backing array.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}

// NewMatFill creates a rows x cols matrix with every cell set to val,
// typically LogZero for an empty transition table.
func NewMatFill(rows, cols int, val float64) Mat {
	m := NewMat(rows, cols)
	if rows == 0 || cols == 0 {
		return m
	}
	data := m[0][:rows*cols]
	for i := range data {
		data[i] = val
	}
	return m
}

// CloneMat returns a deep copy of m sharing no backing storage.
func CloneMat(m Mat) Mat {
	if len(m) == 0 {
		return nil
	}
	out := NewMat(len(m), len(m[0]))
	for i := range m {
		copy(out[i], m[i])
	}
	return out
}

// SquareOrder returns the order of m and the first row whose length
// differs from it, or -1 if m is square.
func SquareOrder(m Mat) (n, badRow int) {
	n = len(m)
	for i, row := range m {
		if len(row) != n {
			return n, i
		}
	}
	return n, -1
}
