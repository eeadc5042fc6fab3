package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"server/internal/domain"
)

type stubRuntime struct {
	invokeOut *bedrockruntime.InvokeModelOutput
	startOut  *bedrockruntime.StartAsyncInvokeOutput
	getOut    *bedrockruntime.GetAsyncInvokeOutput
	err       error

	lastInvoke *bedrockruntime.InvokeModelInput
	lastStart  *bedrockruntime.StartAsyncInvokeInput
}

func (s *stubRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	s.lastInvoke = in
	return s.invokeOut, s.err
}

func (s *stubRuntime) StartAsyncInvoke(_ context.Context, in *bedrockruntime.StartAsyncInvokeInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.StartAsyncInvokeOutput, error) {
	s.lastStart = in
	return s.startOut, s.err
}

func (s *stubRuntime) GetAsyncInvoke(_ context.Context, _ *bedrockruntime.GetAsyncInvokeInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.GetAsyncInvokeOutput, error) {
	return s.getOut, s.err
}

func TestInvokeModelSendsJSONBody(t *testing.T) {
	rt := &stubRuntime{invokeOut: &bedrockruntime.InvokeModelOutput{Body: []byte(`{"images":["aGk="]}`)}}
	c := &Client{rt: rt}

	body, err := c.InvokeModel(context.Background(), "amazon.nova-canvas-v1:0", map[string]any{"taskType": "TEXT_IMAGE"})
	if err != nil {
		t.Fatalf("InvokeModel returned error: %v", err)
	}
	if string(body) != `{"images":["aGk="]}` {
		t.Fatalf("body = %s", body)
	}
	if got := aws.ToString(rt.lastInvoke.ModelId); got != "amazon.nova-canvas-v1:0" {
		t.Fatalf("model id = %q", got)
	}
	if got := aws.ToString(rt.lastInvoke.ContentType); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	if string(rt.lastInvoke.Body) != `{"taskType":"TEXT_IMAGE"}` {
		t.Fatalf("request body = %s", rt.lastInvoke.Body)
	}
}

func TestStartAsyncInvokeReturnsARN(t *testing.T) {
	rt := &stubRuntime{startOut: &bedrockruntime.StartAsyncInvokeOutput{
		InvocationArn: aws.String("arn:aws:bedrock:us-east-1:123:async-invoke/abc"),
	}}
	c := &Client{rt: rt}

	arn, err := c.StartAsyncInvoke(context.Background(), "amazon.nova-reel-v1:0", map[string]any{"taskType": "TEXT_VIDEO"}, "s3://bucket")
	if err != nil {
		t.Fatalf("StartAsyncInvoke returned error: %v", err)
	}
	if arn != "arn:aws:bedrock:us-east-1:123:async-invoke/abc" {
		t.Fatalf("arn = %q", arn)
	}
	s3cfg, ok := rt.lastStart.OutputDataConfig.(*types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig)
	if !ok {
		t.Fatalf("output data config type = %T", rt.lastStart.OutputDataConfig)
	}
	if got := aws.ToString(s3cfg.Value.S3Uri); got != "s3://bucket" {
		t.Fatalf("s3 uri = %q", got)
	}
}

func TestGetAsyncInvokeNormalizesStatus(t *testing.T) {
	tests := []struct {
		sdk  types.AsyncInvokeStatus
		want AsyncStatus
	}{
		{types.AsyncInvokeStatusInProgress, AsyncStatusPending},
		{types.AsyncInvokeStatusCompleted, AsyncStatusCompleted},
		{types.AsyncInvokeStatusFailed, AsyncStatusFailed},
	}
	for _, tt := range tests {
		rt := &stubRuntime{getOut: &bedrockruntime.GetAsyncInvokeOutput{
			Status:         tt.sdk,
			FailureMessage: aws.String("boom"),
			OutputDataConfig: &types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig{
				Value: types.AsyncInvokeS3OutputDataConfig{S3Uri: aws.String("s3://bucket/out")},
			},
		}}
		c := &Client{rt: rt}
		st, err := c.GetAsyncInvoke(context.Background(), "arn")
		if err != nil {
			t.Fatalf("GetAsyncInvoke(%s) returned error: %v", tt.sdk, err)
		}
		if st.Status != tt.want {
			t.Errorf("status for %s = %s, want %s", tt.sdk, st.Status, tt.want)
		}
		if st.OutputS3URI != "s3://bucket/out" {
			t.Errorf("output uri = %q", st.OutputS3URI)
		}
		if st.FailureMessage != "boom" {
			t.Errorf("failure message = %q", st.FailureMessage)
		}
	}
}

func TestMapErrorTaxonomy(t *testing.T) {
	tests := []struct {
		code      string
		wantCode  string
		retryable bool
	}{
		{"ValidationException", domain.CodeValidation, false},
		{"ThrottlingException", domain.CodeRateLimitExceeded, true},
		{"TooManyRequestsException", domain.CodeRateLimitExceeded, true},
		{"AccessDeniedException", domain.CodeAccessDenied, false},
		{"ResourceNotFoundException", domain.CodeNotFound, false},
		{"ServiceUnavailableException", domain.CodeServiceUnavailable, true},
		{"ModelTimeoutException", domain.CodeModelTimeout, true},
		{"SomethingElseException", domain.CodeInternal, true},
	}
	for _, tt := range tests {
		err := mapError(&smithy.GenericAPIError{Code: tt.code, Message: "raw provider text"})
		var de *domain.Error
		if !errors.As(err, &de) {
			t.Fatalf("%s: error type = %T", tt.code, err)
		}
		if de.Code != tt.wantCode {
			t.Errorf("%s: code = %s, want %s", tt.code, de.Code, tt.wantCode)
		}
		if de.Retryable != tt.retryable {
			t.Errorf("%s: retryable = %v, want %v", tt.code, de.Retryable, tt.retryable)
		}
		if de.Message == "raw provider text" {
			t.Errorf("%s: raw provider message must not leak", tt.code)
		}
	}
}

func TestMapErrorPassesThroughFailures(t *testing.T) {
	rt := &stubRuntime{err: &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}}
	c := &Client{rt: rt}

	_, err := c.InvokeModel(context.Background(), "m", map[string]any{})
	var de *domain.Error
	if !errors.As(err, &de) || de.Code != domain.CodeRateLimitExceeded {
		t.Fatalf("unexpected error: %v", err)
	}
}
