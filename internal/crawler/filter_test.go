package crawler

import "testing"

func TestHostFilter(t *testing.T) {
	filter := NewHostFilter([]string{" www.YouTube.com ", ""})

	tests := []struct {
		link string
		want bool
	}{
		{"https://www.youtube.com/playlist?list=PL1", true},
		{"https://youtube.com/playlist?list=PL1", true},
		{"https://m.youtube.com/playlist?list=PL1", true},
		{"https://youtube.com:443/playlist?list=PL1", true},
		{"https://notyoutube.com/playlist?list=PL1", false},
		{"https://youtube.com.evil.example/playlist?list=PL1", false},
		{"http://127.0.0.1:9222/json", false},
		{"://broken", false},
	}

	for _, tt := range tests {
		if got := filter.Allow(tt.link); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestEmptyHostFilterAllowsAll(t *testing.T) {
	if !NewHostFilter(nil).Allow("http://localhost:8080/playlist?list=PL1") {
		t.Error("an empty filter should admit every host")
	}
}
