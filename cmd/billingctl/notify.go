package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apartment_app_echo/internal/services"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send test notifications",
}

var whatsappOpts struct {
	phone string
	msg   string
}

var notifyWhatsappCmd = &cobra.Command{
	Use:     "whatsapp",
	Short:   "Send a WhatsApp message through WAHA",
	Example: `  billingctl notify whatsapp --phone 0912345678 --msg "Xin chào"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		service := services.NewWahaService(cfg.WahaBaseURL, cfg.WahaAPIKey, cfg.WhatsappCountryCode)
		chatID := services.NormalizeChatID(whatsappOpts.phone, cfg.WhatsappCountryCode)

		fmt.Fprintf(cmd.OutOrStdout(), "Sending message to %s\n", chatID)
		if err := service.SendMessage(cmd.Context(), whatsappOpts.phone, whatsappOpts.msg); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Message sent successfully!")
		return nil
	},
}

func init() {
	f := notifyWhatsappCmd.Flags()
	f.StringVar(&whatsappOpts.phone, "phone", "", "Phone number or chat ID (required)")
	f.StringVar(&whatsappOpts.msg, "msg", "Tin nhắn thử nghiệm từ hệ thống hóa đơn", "Message body")
	_ = notifyWhatsappCmd.MarkFlagRequired("phone")

	notifyCmd.AddCommand(notifyWhatsappCmd)
	rootCmd.AddCommand(notifyCmd)
}
