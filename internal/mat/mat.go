// Package mat provides a small row-major, float64 matrix type used by the
// attitude estimator's covariance propagation. It intentionally implements
// only the handful of operations the EKF needs (no decompositions, no
// sparse paths) — see DESIGN.md for why the teacher's larger linear-algebra
// surface (SVD/QR/Cholesky/NNLS) was not carried forward.
package mat

import "fmt"

// Matrix is a dense matrix backed by a flat, row-major slice.
type Matrix struct {
	rows, cols int
	data       []float64
}

func New(rows, cols int) Matrix {
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func Identity(n int) Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// FromRows builds a matrix from row-major literal data, convenient for
// the EKF's fixed-shape operators and the soft-iron matrix fit.
func FromRows(rows [][]float64) Matrix {
	if len(rows) == 0 {
		return Matrix{}
	}
	m := New(len(rows), len(rows[0]))
	for i, row := range rows {
		copy(m.data[i*m.cols:(i+1)*m.cols], row)
	}
	return m
}

func (m Matrix) Rows() int { return m.rows }
func (m Matrix) Cols() int { return m.cols }

func (m Matrix) At(r, c int) float64 { return m.data[r*m.cols+c] }
func (m Matrix) Set(r, c int, v float64) {
	m.data[r*m.cols+c] = v
}

func (m Matrix) Clone() Matrix {
	out := New(m.rows, m.cols)
	copy(out.data, m.data)
	return out
}

func (m Matrix) Add(o Matrix) Matrix {
	out := New(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] + o.data[i]
	}
	return out
}

func (m Matrix) Sub(o Matrix) Matrix {
	out := New(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] - o.data[i]
	}
	return out
}

func (m Matrix) Scale(s float64) Matrix {
	out := New(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] * s
	}
	return out
}

func (m Matrix) Transpose() Matrix {
	out := New(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.Set(c, r, m.At(r, c))
		}
	}
	return out
}

func (m Matrix) Mul(o Matrix) Matrix {
	if m.cols != o.rows {
		panic(fmt.Sprintf("mat: incompatible shapes for multiply: %dx%d * %dx%d", m.rows, m.cols, o.rows, o.cols))
	}
	out := New(m.rows, o.cols)
	for r := 0; r < m.rows; r++ {
		for k := 0; k < m.cols; k++ {
			v := m.At(r, k)
			if v == 0 {
				continue
			}
			for c := 0; c < o.cols; c++ {
				out.Set(r, c, out.At(r, c)+v*o.At(k, c))
			}
		}
	}
	return out
}

// Inverse computes the matrix inverse via Gauss-Jordan elimination with
// partial pivoting. Returns an error if the matrix is singular (to
// machine-epsilon tolerance).
func (m Matrix) Inverse() (Matrix, error) {
	n := m.rows
	if n != m.cols {
		return Matrix{}, fmt.Errorf("mat: inverse requires a square matrix, got %dx%d", m.rows, m.cols)
	}

	aug := New(n, 2*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			aug.Set(r, c, m.At(r, c))
		}
		aug.Set(r, n+r, 1)
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := aug.At(col, col)
		if best < 0 {
			best = -best
		}
		for r := col + 1; r < n; r++ {
			v := aug.At(r, col)
			if v < 0 {
				v = -v
			}
			if v > best {
				best = v
				pivot = r
			}
		}
		if best < 1e-15 {
			return Matrix{}, fmt.Errorf("mat: matrix is singular")
		}
		if pivot != col {
			for c := 0; c < 2*n; c++ {
				aug.data[col*aug.cols+c], aug.data[pivot*aug.cols+c] = aug.data[pivot*aug.cols+c], aug.data[col*aug.cols+c]
			}
		}

		pv := aug.At(col, col)
		for c := 0; c < 2*n; c++ {
			aug.Set(col, c, aug.At(col, c)/pv)
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug.At(r, col)
			if factor == 0 {
				continue
			}
			for c := 0; c < 2*n; c++ {
				aug.Set(r, c, aug.At(r, c)-factor*aug.At(col, c))
			}
		}
	}

	out := New(n, n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out.Set(r, c, aug.At(r, n+c))
		}
	}
	return out, nil
}

// Col returns column c as a flat slice, used to pull a state/measurement
// vector out of an Nx1 matrix.
func (m Matrix) Col(c int) []float64 {
	out := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		out[r] = m.At(r, c)
	}
	return out
}

// ColVector builds an Nx1 matrix from a flat slice.
func ColVector(values []float64) Matrix {
	m := New(len(values), 1)
	copy(m.data, values)
	return m
}
