// Package bedrock wraps the Amazon Bedrock runtime API behind the three
// calls the generation service needs: synchronous invoke, async submit,
// and async status polling.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"server/internal/infra"
)

const roleSessionName = "nova-media-generator"

// Options configures the Bedrock client.
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string

	// AssumeRoleARN, when set, is assumed before first use. If the
	// elevation fails the client falls back to its base credentials
	// instead of failing startup.
	AssumeRoleARN string

	Logger *infra.Logger
}

// runtimeAPI is the slice of the Bedrock runtime SDK the client uses.
type runtimeAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	StartAsyncInvoke(ctx context.Context, in *bedrockruntime.StartAsyncInvokeInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.StartAsyncInvokeOutput, error)
	GetAsyncInvoke(ctx context.Context, in *bedrockruntime.GetAsyncInvokeInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.GetAsyncInvokeOutput, error)
}

// Client performs model invocations against Amazon Bedrock.
type Client struct {
	rt       runtimeAPI
	awsCfg   aws.Config
	elevated bool
}

// NewClient builds the AWS configuration, optionally assumes the delegated
// role, and returns a ready client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}

	c := &Client{awsCfg: cfg}

	if opts.AssumeRoleARN != "" {
		stsClient := sts.NewFromConfig(cfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, opts.AssumeRoleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
			o.Duration = time.Hour
		})
		cache := aws.NewCredentialsCache(provider)
		if _, err := cache.Retrieve(ctx); err != nil {
			// Degrade, don't fail: base credentials stay in effect.
			if opts.Logger != nil {
				opts.Logger.Warn().Err(err).Str("role_arn", opts.AssumeRoleARN).
					Msg("bedrock: assume role failed, using base credentials")
			}
		} else {
			c.awsCfg.Credentials = cache
			c.elevated = true
			if opts.Logger != nil {
				opts.Logger.Info().Str("role_arn", opts.AssumeRoleARN).Msg("bedrock: assumed role")
			}
		}
	}

	c.rt = bedrockruntime.NewFromConfig(c.awsCfg)
	return c, nil
}

// AWSConfig exposes the resolved configuration so sibling clients (S3) can
// share the same credentials.
func (c *Client) AWSConfig() aws.Config {
	return c.awsCfg
}

// Elevated reports whether the delegated role was assumed at startup.
func (c *Client) Elevated() bool {
	return c.elevated
}

// InvokeModel performs a synchronous invocation and returns the raw
// response body.
func (c *Client) InvokeModel(ctx context.Context, modelID string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("bedrock: encode model input: %w", err)
	}
	out, err := c.rt.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out.Body, nil
}

// StartAsyncInvoke submits a long-running invocation whose result will be
// written to outputS3URI, returning the invocation ARN.
func (c *Client) StartAsyncInvoke(ctx context.Context, modelID string, payload any, outputS3URI string) (string, error) {
	out, err := c.rt.StartAsyncInvoke(ctx, &bedrockruntime.StartAsyncInvokeInput{
		ModelId:    aws.String(modelID),
		ModelInput: document.NewLazyDocument(payload),
		OutputDataConfig: &types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig{
			Value: types.AsyncInvokeS3OutputDataConfig{S3Uri: aws.String(outputS3URI)},
		},
	})
	if err != nil {
		return "", mapError(err)
	}
	return aws.ToString(out.InvocationArn), nil
}

// AsyncStatus is the normalized state of an async invocation.
type AsyncStatus string

const (
	AsyncStatusPending   AsyncStatus = "pending"
	AsyncStatusCompleted AsyncStatus = "completed"
	AsyncStatusFailed    AsyncStatus = "failed"
)

// AsyncInvokeStatus reports the provider-side state of one invocation.
// OutputS3URI is set once completed; FailureMessage once failed.
type AsyncInvokeStatus struct {
	Status         AsyncStatus
	OutputS3URI    string
	FailureMessage string
}

// GetAsyncInvoke polls the invocation identified by invocationArn.
func (c *Client) GetAsyncInvoke(ctx context.Context, invocationArn string) (*AsyncInvokeStatus, error) {
	out, err := c.rt.GetAsyncInvoke(ctx, &bedrockruntime.GetAsyncInvokeInput{
		InvocationArn: aws.String(invocationArn),
	})
	if err != nil {
		return nil, mapError(err)
	}

	status := &AsyncInvokeStatus{
		Status:         AsyncStatusPending,
		FailureMessage: aws.ToString(out.FailureMessage),
	}
	switch out.Status {
	case types.AsyncInvokeStatusCompleted:
		status.Status = AsyncStatusCompleted
	case types.AsyncInvokeStatusFailed:
		status.Status = AsyncStatusFailed
	}
	if s3cfg, ok := out.OutputDataConfig.(*types.AsyncInvokeOutputDataConfigMemberS3OutputDataConfig); ok {
		status.OutputS3URI = aws.ToString(s3cfg.Value.S3Uri)
	}
	return status, nil
}
