package distribution

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func TestExponentialSampler_InverseTransform(t *testing.T) {
	// GIVEN a source that always returns 0.5
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	src.EXPECT().Float64().Return(0.5).Times(1)

	s, err := NewExponential(2)
	require.NoError(t, err)

	// WHEN one sample is drawn
	got := s.Sample(src)

	// THEN value = -(1/rate) ln(u) and the raw draw is reported
	assert.InDelta(t, -0.5*math.Log(0.5), got.Value, 1e-12)
	assert.InDelta(t, 0.3466, got.Value, 1e-4)
	assert.Equal(t, 0.5, got.Uniform)
}

func TestExponentialSampler_RedrawsZero(t *testing.T) {
	// GIVEN a source whose first two draws are exactly zero
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Float64().Return(0.0),
		src.EXPECT().Float64().Return(0.0),
		src.EXPECT().Float64().Return(0.25),
	)

	s, err := NewExponential(1)
	require.NoError(t, err)

	// WHEN sampled
	got := s.Sample(src)

	// THEN the zeros are discarded and the result is finite
	assert.Equal(t, 0.25, got.Uniform)
	assert.InDelta(t, -math.Log(0.25), got.Value, 1e-12)
	assert.False(t, math.IsInf(got.Value, 0))
}

func TestUniformSampler_ScalesDraw(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	src.EXPECT().Float64().Return(0.25)

	s, err := NewUniform(1, 3)
	require.NoError(t, err)

	got := s.Sample(src)
	assert.InDelta(t, 1.5, got.Value, 1e-12)
	assert.Equal(t, 0.25, got.Uniform)
}

func TestNormalSampler_BoxMuller(t *testing.T) {
	// GIVEN u = e^-0.5 so sqrt(-2 ln u) = 1, and v = 0.5 so cos(2πv) = -1
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	u := math.Exp(-0.5)
	gomock.InOrder(
		src.EXPECT().Float64().Return(u),
		src.EXPECT().Float64().Return(0.5),
	)

	s, err := NewNormal(1, 0.3)
	require.NoError(t, err)

	// WHEN sampled
	got := s.Sample(src)

	// THEN z = -1 and value = mean - stdDev
	assert.InDelta(t, 0.7, got.Value, 1e-9)
	assert.Equal(t, u, got.Uniform)
}

func TestNormalSampler_NegativeClampedToZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Float64().Return(math.Exp(-0.5)),
		src.EXPECT().Float64().Return(0.5),
	)

	s, err := NewNormal(1, 2)
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.Sample(src).Value)
}

func TestNormalSampler_RedrawsZeroForBothUniforms(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Float64().Return(0.0),
		src.EXPECT().Float64().Return(math.Exp(-0.5)),
		src.EXPECT().Float64().Return(0.0),
		src.EXPECT().Float64().Return(0.5),
	)

	s, err := NewNormal(2, 1)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, s.Sample(src).Value, 1e-9)
}

func TestExponentialSampler_MeanMatchesRate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewSampler(DistSpec{Type: KindExponential, Params: map[string]float64{"rate": 4}})
	require.NoError(t, err)

	n := 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := s.Sample(rng)
		if v.Value < 0 {
			t.Fatalf("sample %d: got %v, want >= 0", i, v.Value)
		}
		if v.Uniform <= 0 || v.Uniform >= 1 {
			t.Fatalf("sample %d: uniform %v outside (0,1)", i, v.Uniform)
		}
		sum += v.Value
	}
	mean := sum / float64(n)
	if math.Abs(mean-0.25)/0.25 > 0.05 {
		t.Errorf("exponential mean = %.4f, want ≈ 0.25 (within 5%%)", mean)
	}
}

func TestUniformSampler_StaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, err := NewSampler(ServiceSpec(KindUniform, 2))
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		v := s.Sample(rng).Value
		if v < 0.5 || v >= 1.0 {
			t.Fatalf("sample %d: %v outside [0.5, 1.0)", i, v)
		}
	}
}

func TestNormalSampler_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, err := NewNormal(0.1, 1)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		if v := s.Sample(rng).Value; v < 0 {
			t.Fatalf("sample %d: got %v, want >= 0", i, v)
		}
	}
}

func TestNewSampler_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"zero rate", DistSpec{Type: KindExponential, Params: map[string]float64{"rate": 0}}},
		{"negative rate", DistSpec{Type: KindExponential, Params: map[string]float64{"rate": -1}}},
		{"infinite rate", DistSpec{Type: KindExponential, Params: map[string]float64{"rate": math.Inf(1)}}},
		{"missing rate", DistSpec{Type: KindExponential}},
		{"max equals min", DistSpec{Type: KindUniform, Params: map[string]float64{"min": 1, "max": 1}}},
		{"max below min", DistSpec{Type: KindUniform, Params: map[string]float64{"min": 2, "max": 1}}},
		{"missing max", DistSpec{Type: KindUniform, Params: map[string]float64{"min": 1}}},
		{"negative std dev", DistSpec{Type: KindNormal, Params: map[string]float64{"mean": 1, "std_dev": -0.1}}},
		{"unknown type", DistSpec{Type: "weibull"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSampler(tt.spec)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("NewSampler(%+v) error = %v, want ErrInvalidParams", tt.spec, err)
			}
		})
	}
}

func TestNewNormal_ZeroStdDevIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s, err := NewNormal(0.5, 0)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0.5, s.Sample(rng).Value)
	}
}

func TestParseKind_Aliases(t *testing.T) {
	tests := map[string]Kind{
		"exponential": KindExponential,
		"MMC":         KindExponential,
		" Uniform ":   KindUniform,
		"mgc":         KindUniform,
		"NORMAL":      KindNormal,
		"MNC":         KindNormal,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("erlang")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestServiceSpec_DerivesParamsFromRate(t *testing.T) {
	exp := ServiceSpec(KindExponential, 3)
	assert.Equal(t, map[string]float64{"rate": 3}, exp.Params)

	uni := ServiceSpec(KindUniform, 4)
	assert.InDelta(t, 0.25, uni.Params["min"], 1e-12)
	assert.InDelta(t, 0.5, uni.Params["max"], 1e-12)

	norm := ServiceSpec(KindNormal, 2)
	assert.InDelta(t, 0.5, norm.Params["mean"], 1e-12)
	assert.InDelta(t, 0.15, norm.Params["std_dev"], 1e-12)
}
