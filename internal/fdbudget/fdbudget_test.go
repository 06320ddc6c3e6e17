package fdbudget

import "testing"

func TestInferBatchSizeScenarios(t *testing.T) {
	cases := []struct {
		name      string
		requested uint16
		soft      uint64
		want      uint16
	}{
		{"S5 halved for tiny limit", 50000, 120, 60},
		{"S6 capped at average batch", 50000, 9000, 3000},
		{"S7 headroom subtracted", 50000, 5000, 4900},
		{"soft comfortably above requested", 10, 1000, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := InferBatchSize(tc.requested, tc.soft)
			if got != tc.want {
				t.Fatalf("InferBatchSize(%d, %d) = %d, want %d", tc.requested, tc.soft, got, tc.want)
			}
		})
	}
}

func TestInferBatchSizeMonotonicInSoft(t *testing.T) {
	requested := uint16(2000)
	prev, _ := InferBatchSize(requested, 0)
	for soft := uint64(1); soft <= uint64(requested); soft++ {
		got, _ := InferBatchSize(requested, soft)
		if got < prev {
			t.Fatalf("InferBatchSize not monotonic at soft=%d: got %d after %d", soft, got, prev)
		}
		if got > soft {
			t.Fatalf("InferBatchSize(%d, %d) = %d exceeds soft limit", requested, soft, got)
		}
		prev = got
	}
}

type fakeLimiter struct {
	raised   bool
	raiseOK  bool
	softVal  uint64
	softErr  error
}

func (f *fakeLimiter) raise(want uint64) bool {
	f.raised = true
	if f.raiseOK {
		f.softVal = want
	}
	return f.raiseOK
}

func (f *fakeLimiter) soft() (uint64, error) { return f.softVal, f.softErr }

func TestNegotiateWithRaisesWhenUlimitRequested(t *testing.T) {
	fl := &fakeLimiter{raiseOK: true, softVal: 500}
	want := uint64(4000)

	res, err := negotiateWith(fl, 3000, &want)
	if err != nil {
		t.Fatal(err)
	}
	if !fl.raised {
		t.Fatal("expected raise to be attempted")
	}
	if res.SoftLimit != 4000 {
		t.Fatalf("expected soft limit to reflect the raise, got %d", res.SoftLimit)
	}
}

func TestNegotiateWithWarnsOnFailedRaise(t *testing.T) {
	fl := &fakeLimiter{raiseOK: false, softVal: 500}
	want := uint64(4000)

	res, err := negotiateWith(fl, 3000, &want)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning when the raise fails")
	}
}
