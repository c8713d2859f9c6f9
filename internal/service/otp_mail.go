package service

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers one-time passcodes
type Mailer interface {
	SendOTP(to, code string) error
}

type MailConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
	AppName  string
}

type SMTPMailer struct {
	cfg    MailConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg MailConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password),
	}
}

func (m *SMTPMailer) SendOTP(to, code string) error {
	if to == m.cfg.Sender {
		return errors.New("invalid email address")
	}

	return m.dialer.DialAndSend(otpMessage(m.cfg, to, code))
}

func otpMessage(cfg MailConfig, to, code string) *gomail.Message {
	name := cfg.AppName
	if name == "" {
		name = "My Space"
	}

	m := gomail.NewMessage()

	m.SetHeader("From", cfg.Sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your %v login code", name))
	m.SetBody("text/html", fmt.Sprintf(
		"Your one-time passcode is <b>%v</b>.\n\nIt expires in 15 minutes. If you didn't try to log in to %v you can ignore this email.",
		code, name))

	return m
}
