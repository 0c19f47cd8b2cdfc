package pricelist

import "golang.org/x/sync/errgroup"

// join4 runs the four functions concurrently and waits for all of them.
// A failing function does not cancel the others. If several fail, the error of
// the first one in argument order is returned.
func join4[A, B, C, D any](
	fa func() (A, error),
	fb func() (B, error),
	fc func() (C, error),
	fd func() (D, error),
) (a A, b B, c C, d D, err error) {
	var errs [4]error
	var g errgroup.Group
	g.Go(func() error {
		a, errs[0] = fa()
		return errs[0]
	})
	g.Go(func() error {
		b, errs[1] = fb()
		return errs[1]
	})
	g.Go(func() error {
		c, errs[2] = fc()
		return errs[2]
	})
	g.Go(func() error {
		d, errs[3] = fd()
		return errs[3]
	})
	if g.Wait() == nil {
		return a, b, c, d, nil
	}
	for _, e := range errs {
		if e != nil {
			return a, b, c, d, e
		}
	}
	return a, b, c, d, nil
}
