package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// MaxSubjectLength is the longest subject SNS accepts.
const MaxSubjectLength = 100

// Client provides access to AWS APIs.
type Client interface {
	// GetCallerIdentity returns the account ID of the current credentials.
	GetCallerIdentity(ctx context.Context) (string, error)

	// GetAccountAlias returns the account alias if set.
	GetAccountAlias(ctx context.Context) (*string, error)

	// IAM
	ListUsers(ctx context.Context) ([]User, error)
	GetLoginProfile(ctx context.Context, userName string) (*LoginProfile, error)
	ListAccessKeys(ctx context.Context, userName string) ([]AccessKey, error)
	GetAccessKeyLastUsed(ctx context.Context, accessKeyID string) (*AccessKeyLastUsed, error)
	GenerateCredentialReport(ctx context.Context) error
	GetCredentialReport(ctx context.Context) ([]byte, error)

	// SNS
	FindTopic(ctx context.Context, pattern string) (*Topic, error)
	Publish(ctx context.Context, topicARN, subject, message string) (string, error)
}

// AWSClient implements the Client interface using AWS SDK v2.
type AWSClient struct {
	cfg aws.Config
}

var _ Client = (*AWSClient)(nil)

// NewClient creates a new AWS client using the default credential chain.
// An empty region defers to the environment and shared config.
func NewClient(ctx context.Context, region string) (*AWSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &AWSClient{cfg: cfg}, nil
}

// NewClientWithRole creates a new AWS client that assumes the specified role.
func NewClientWithRole(ctx context.Context, region, roleARN, externalID string) (*AWSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	stsClient := sts.NewFromConfig(cfg)
	creds := stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
		if externalID != "" {
			o.ExternalID = &externalID
		}
		o.Duration = 1 * time.Hour
	})

	cfg.Credentials = aws.NewCredentialsCache(creds)

	return &AWSClient{cfg: cfg}, nil
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}

// GetCallerIdentity returns the account ID of the current credentials.
func (c *AWSClient) GetCallerIdentity(ctx context.Context) (string, error) {
	stsClient := sts.NewFromConfig(c.cfg)
	output, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}
	return aws.ToString(output.Account), nil
}

// GetAccountAlias returns the account alias if set.
func (c *AWSClient) GetAccountAlias(ctx context.Context) (*string, error) {
	iamClient := iam.NewFromConfig(c.cfg)
	output, err := iamClient.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil {
		return nil, fmt.Errorf("listing account aliases: %w", err)
	}
	if len(output.AccountAliases) > 0 {
		return &output.AccountAliases[0], nil
	}
	return nil, nil
}

// ListUsers lists all IAM users in the account, in API order.
func (c *AWSClient) ListUsers(ctx context.Context) ([]User, error) {
	iamClient := iam.NewFromConfig(c.cfg)
	paginator := iam.NewListUsersPaginator(iamClient, &iam.ListUsersInput{})

	var users []User
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		for _, u := range output.Users {
			users = append(users, User{
				UserName:         aws.ToString(u.UserName),
				ARN:              aws.ToString(u.Arn),
				CreateDate:       aws.ToTime(u.CreateDate),
				PasswordLastUsed: u.PasswordLastUsed,
			})
		}
	}
	return users, nil
}

// GetLoginProfile returns the user's console password profile.
// It returns ErrNotFound if the user has no password.
func (c *AWSClient) GetLoginProfile(ctx context.Context, userName string) (*LoginProfile, error) {
	iamClient := iam.NewFromConfig(c.cfg)
	output, err := iamClient.GetLoginProfile(ctx, &iam.GetLoginProfileInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		if isNoSuchEntity(err) {
			return nil, fmt.Errorf("getting login profile for %s: %w", userName, ErrNotFound)
		}
		return nil, fmt.Errorf("getting login profile for %s: %w", userName, err)
	}

	profile := output.LoginProfile
	return &LoginProfile{
		UserName:              aws.ToString(profile.UserName),
		CreateDate:            aws.ToTime(profile.CreateDate),
		PasswordResetRequired: profile.PasswordResetRequired,
	}, nil
}

// ListAccessKeys lists the access keys of a user.
func (c *AWSClient) ListAccessKeys(ctx context.Context, userName string) ([]AccessKey, error) {
	iamClient := iam.NewFromConfig(c.cfg)
	paginator := iam.NewListAccessKeysPaginator(iamClient, &iam.ListAccessKeysInput{
		UserName: aws.String(userName),
	})

	var keys []AccessKey
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing access keys for %s: %w", userName, err)
		}
		for _, k := range output.AccessKeyMetadata {
			if aws.ToString(k.AccessKeyId) == "" {
				continue
			}
			keys = append(keys, AccessKey{
				UserName:    aws.ToString(k.UserName),
				AccessKeyID: aws.ToString(k.AccessKeyId),
				Status:      string(k.Status),
				CreateDate:  aws.ToTime(k.CreateDate),
			})
		}
	}
	return keys, nil
}

// GetAccessKeyLastUsed returns when an access key was last used.
func (c *AWSClient) GetAccessKeyLastUsed(ctx context.Context, accessKeyID string) (*AccessKeyLastUsed, error) {
	iamClient := iam.NewFromConfig(c.cfg)
	output, err := iamClient.GetAccessKeyLastUsed(ctx, &iam.GetAccessKeyLastUsedInput{
		AccessKeyId: aws.String(accessKeyID),
	})
	if err != nil {
		return nil, fmt.Errorf("getting last use of access key %s: %w", accessKeyID, err)
	}

	lastUsed := &AccessKeyLastUsed{}
	if output.AccessKeyLastUsed != nil {
		lastUsed.LastUsedDate = output.AccessKeyLastUsed.LastUsedDate
		lastUsed.Region = aws.ToString(output.AccessKeyLastUsed.Region)
		lastUsed.ServiceName = aws.ToString(output.AccessKeyLastUsed.ServiceName)
	}
	return lastUsed, nil
}

// GenerateCredentialReport asks IAM to start generating the credential report.
// It returns immediately; the report becomes available asynchronously.
func (c *AWSClient) GenerateCredentialReport(ctx context.Context) error {
	iamClient := iam.NewFromConfig(c.cfg)
	if _, err := iamClient.GenerateCredentialReport(ctx, &iam.GenerateCredentialReportInput{}); err != nil {
		return fmt.Errorf("generating credential report: %w", err)
	}
	return nil
}

// GetCredentialReport retrieves the raw CSV credential report.
// It returns ErrReportNotReady while the report is being generated.
func (c *AWSClient) GetCredentialReport(ctx context.Context) ([]byte, error) {
	iamClient := iam.NewFromConfig(c.cfg)
	output, err := iamClient.GetCredentialReport(ctx, &iam.GetCredentialReportInput{})
	if err != nil {
		if isReportNotReady(err) {
			return nil, fmt.Errorf("getting credential report: %w", ErrReportNotReady)
		}
		return nil, fmt.Errorf("getting credential report: %w", err)
	}
	return output.Content, nil
}

// FindTopic returns the SNS topic matching pattern.
// It returns ErrTopicNotFound when no topic matches.
func (c *AWSClient) FindTopic(ctx context.Context, pattern string) (*Topic, error) {
	snsClient := sns.NewFromConfig(c.cfg)
	paginator := sns.NewListTopicsPaginator(snsClient, &sns.ListTopicsInput{})

	var arns []string
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing topics: %w", err)
		}
		for _, t := range output.Topics {
			arns = append(arns, aws.ToString(t.TopicArn))
		}
	}

	arn, ok := matchTopic(arns, pattern)
	if !ok {
		return nil, fmt.Errorf("finding topic %q: %w", pattern, ErrTopicNotFound)
	}
	return &Topic{ARN: arn}, nil
}

// matchTopic prefers a topic whose name equals pattern, then the first ARN
// containing pattern.
func matchTopic(arns []string, pattern string) (string, bool) {
	if pattern == "" {
		return "", false
	}
	for _, arn := range arns {
		if topicName(arn) == pattern {
			return arn, true
		}
	}
	for _, arn := range arns {
		if strings.Contains(arn, pattern) {
			return arn, true
		}
	}
	return "", false
}

// topicName returns the last colon-separated segment of a topic ARN.
func topicName(arn string) string {
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

// Publish sends a message to an SNS topic and returns the message ID.
func (c *AWSClient) Publish(ctx context.Context, topicARN, subject, message string) (string, error) {
	snsClient := sns.NewFromConfig(c.cfg)
	output, err := snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(truncateSubject(subject)),
		Message:  aws.String(message),
	})
	if err != nil {
		return "", fmt.Errorf("publishing to %s: %w", topicARN, err)
	}
	return aws.ToString(output.MessageId), nil
}

// truncateSubject shortens subject to MaxSubjectLength runes.
func truncateSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) <= MaxSubjectLength {
		return subject
	}
	return string(runes[:MaxSubjectLength])
}
