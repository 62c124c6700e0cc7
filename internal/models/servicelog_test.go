package models

import "testing"

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		log     ServiceLog
		wantErr bool
	}{
		{
			name:    "ict with ict payload",
			log:     ServiceLog{JobType: JobTypeICT, ICTData: &ICTData{NetworkType: "fiber"}},
			wantErr: false,
		},
		{
			name:    "solar with solar payload",
			log:     ServiceLog{JobType: JobTypeSolar, SolarData: &SolarData{SystemVoltage: 48}},
			wantErr: false,
		},
		{
			name:    "ict missing payload",
			log:     ServiceLog{JobType: JobTypeICT},
			wantErr: true,
		},
		{
			name:    "solar missing payload",
			log:     ServiceLog{JobType: JobTypeSolar},
			wantErr: true,
		},
		{
			name:    "ict carrying solar payload",
			log:     ServiceLog{JobType: JobTypeICT, ICTData: &ICTData{}, SolarData: &SolarData{}},
			wantErr: true,
		},
		{
			name:    "solar carrying ict payload",
			log:     ServiceLog{JobType: JobTypeSolar, SolarData: &SolarData{}, ICTData: &ICTData{}},
			wantErr: true,
		},
		{
			name:    "unknown job type",
			log:     ServiceLog{JobType: "plumbing"},
			wantErr: true,
		},
		{
			name:    "empty job type",
			log:     ServiceLog{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.log.ValidatePayload()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
