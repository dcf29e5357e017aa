package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/geovantage/lead-intake/internal/config"
	"github.com/geovantage/lead-intake/internal/delivery"
	"github.com/geovantage/lead-intake/internal/notify"
	"github.com/geovantage/lead-intake/pkg/logging"
)

// devSalesInbox receives stub notifications when nothing else is configured.
const devSalesInbox = "sales@localhost"

// buildEmailSender returns the sender named by EMAIL_PROVIDER.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, awsLoader *lazyAWS, logger *logging.Logger) (notify.EmailSender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.EmailProvider)) {
	case "", "stub":
		return notify.NewStubEmailSender(logger), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" || cfg.SendGridFromEmail == "" {
			return nil, fmt.Errorf("bootstrap: sendgrid requires SENDGRID_API_KEY and SENDGRID_FROM_EMAIL")
		}
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	case "ses":
		if cfg.SESFromEmail == "" {
			return nil, fmt.Errorf("bootstrap: ses requires SES_FROM_EMAIL")
		}
		awsCfg, err := awsLoader.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
		}, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// buildTransport chains every configured delivery target: the vendor endpoint,
// the CRM queue, then the sales inbox notification.
func buildTransport(ctx context.Context, cfg *appconfig.Config, awsLoader *lazyAWS, logger *logging.Logger) (delivery.Multi, error) {
	var targets delivery.Multi

	if cfg.LeadEndpointURL != "" {
		targets = append(targets, delivery.NewHTTPForwarder(delivery.HTTPConfig{
			Endpoint: cfg.LeadEndpointURL,
			Token:    cfg.LeadEndpointToken,
			Timeout:  cfg.LeadEndpointTimeout,
		}, logger))
	}

	if cfg.LeadQueueURL != "" {
		awsCfg, err := awsLoader.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		targets = append(targets, delivery.NewSQSForwarder(sqs.NewFromConfig(awsCfg), cfg.LeadQueueURL))
	}

	inbox := cfg.SalesInboxEmail
	if inbox == "" && len(targets) == 0 && cfg.Env == "development" {
		inbox = devSalesInbox
		logger.Warn("no delivery target configured; notifying stub inbox", "to", inbox)
	}
	if inbox != "" {
		sender, err := buildEmailSender(ctx, cfg, awsLoader, logger)
		if err != nil {
			return nil, err
		}
		targets = append(targets, delivery.NewEmailForwarder(sender, inbox, cfg.SalesInboxName))
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("bootstrap: no delivery target configured; set LEAD_ENDPOINT_URL, LEAD_QUEUE_URL or SALES_INBOX_EMAIL")
	}
	return targets, nil
}
