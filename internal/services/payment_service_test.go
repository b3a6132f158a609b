package services

import "testing"

func TestPaymentLiveModeFollowsSecretKeyPrefix(t *testing.T) {
	cases := []struct {
		name      string
		secretKey string
		want      bool
	}{
		{"test key", "sk_test_mock_key", false},
		{"live key", "sk_live_abc123", true},
		{"empty key", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewPaymentService(nil, nil, nil, nil, nil, "pk_test_mock_key", tc.secretKey, nil)
			if got := service.liveMode(); got != tc.want {
				t.Fatalf("liveMode() with %q = %v, want %v", tc.secretKey, got, tc.want)
			}
		})
	}
}
