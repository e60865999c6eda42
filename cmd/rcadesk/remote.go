package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rcadesk/internal/domain"
	rcadesksdk "rcadesk/sdk/go"
)

const tokenEnv = "RCADESK_TOKEN"

// client builds an SDK client from --server (RCADESK_API_URL), the base path and the token
// saved by login (RCADESK_TOKEN).
func client() (*rcadesksdk.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c := rcadesksdk.New(viper.GetString("api_url"))
	c.BasePath = cfg.Server.BasePath
	c.BearerToken = viper.GetString("token")
	return c, nil
}

func withClient(fn func(ctx context.Context, c *rcadesksdk.Client) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), c)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func loginCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and save the token to the workspace .env",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			sess, err := c.Login(cmd.Context(), args[0], r)
			if err != nil {
				return err
			}
			path := filepath.Join(viper.GetString("workspace"), ".env")
			if err := setEnvValue(path, tokenEnv, sess.Token); err != nil {
				return err
			}
			fmt.Printf("signed in as %s (%s); token saved to %s\n", sess.User.Name, sess.User.Role, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "admin or contractor")
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for the signed-in user",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			dv, err := c.Dashboard(ctx)
			if err != nil {
				return err
			}
			return output(dv, func() table.Writer {
				tw := newTable("Metric", "Value")
				if dv.Admin != nil {
					tw.AppendRow(row("Active projects", dv.Admin.ActiveProjects))
					tw.AppendRow(row("Active clients", dv.Admin.ActiveClients))
					tw.AppendRow(row("Pending reviews", dv.Admin.PendingReviews))
					tw.AppendRow(row("Overdue tasks", dv.Admin.OverdueTasks))
				}
				if dv.Contractor != nil {
					tw.AppendRow(row("Active projects", dv.Contractor.ActiveProjects))
					tw.AppendRow(row("Pending tasks", dv.Contractor.PendingTasks))
					tw.AppendRow(row("Unpaid invoices", dv.Contractor.UnpaidInvoices))
					tw.AppendRow(row("Completed projects", dv.Contractor.CompletedProjects))
				}
				tw.AppendRow(row("Unread notifications", dv.Unread))
				for _, u := range dv.Urgent {
					tw.AppendRow(row("Urgent: "+u.Title, u.DueText))
				}
				return tw
			})
		}),
	}
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Projects board"}
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Projects(ctx, status)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Title", "Client", "Value", "Deadline", "Status")
				for _, p := range items {
					tw.AppendRow(row(p.ID, p.Title, p.ClientName, p.Value, p.Deadline, p.Status))
				}
				return tw
			})
		}),
	}
	list.Flags().StringVar(&status, "status", "", "status filter")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a project to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := domain.ParseProjectStatus(args[1])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				p, err := c.MoveProject(ctx, id, st)
				if err != nil {
					return err
				}
				fmt.Printf("project %d is now %s\n", p.ID, p.Status)
				return nil
			})(cmd, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "apply <id>",
		Short: "Submit a proposal for an opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				app, err := c.Apply(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("application %d submitted for %q\n", app.ID, app.ContractTitle)
				return nil
			})(cmd, args)
		},
	})
	return cmd
}

func applicationCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "application", Short: "Contractor applications"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Applications(ctx)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Contract", "Contractor", "Date", "Status")
				for _, a := range items {
					tw.AppendRow(row(a.ID, a.ContractTitle, a.Contractor, a.Date, a.Status))
				}
				return tw
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <status>",
		Short: "Change an application's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := domain.ParseApplicationStatus(args[1])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				app, err := c.SetApplicationStatus(ctx, id, st)
				if err != nil {
					return err
				}
				fmt.Printf("application %d is now %s\n", app.ID, app.Status)
				return nil
			})(cmd, args)
		},
	})
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Tasks"}
	var projectID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Tasks(ctx, projectID)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Title", "Project", "Assignee", "Due", "Status")
				for _, t := range items {
					tw.AppendRow(row(t.ID, t.Title, t.ProjectID, t.AssignedTo, t.DueDate, t.Status))
				}
				return tw
			})
		}),
	}
	list.Flags().Int64Var(&projectID, "project", 0, "project id filter")
	cmd.AddCommand(list)

	var create struct {
		project, assignee int64
		due               string
	}
	createCmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				t, err := c.CreateTask(ctx, args[0], create.project, create.assignee, create.due)
				if err != nil {
					return err
				}
				fmt.Printf("task %d created (due %s)\n", t.ID, t.DueDate)
				return nil
			})(cmd, args)
		},
	}
	createCmd.Flags().Int64Var(&create.project, "project", 0, "project id")
	createCmd.Flags().Int64Var(&create.assignee, "assignee", 0, "assignee user id")
	createCmd.Flags().StringVar(&create.due, "due", "", "due date (YYYY-MM-DD)")
	_ = createCmd.MarkFlagRequired("project")
	_ = createCmd.MarkFlagRequired("assignee")
	cmd.AddCommand(createCmd)
	return cmd
}

func invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "invoice", Short: "Billing"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Invoices(ctx)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Client", "Project", "Amount", "Issued", "Due", "Status")
				for _, inv := range items {
					tw.AppendRow(row(inv.ID, inv.ClientID, inv.ProjectID, fmt.Sprintf("%.2f", inv.Amount), inv.IssueDate, inv.DueDate, inv.Status))
				}
				return tw
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <status>",
		Short: "Change an invoice's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := domain.ParseInvoiceStatus(args[1])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				inv, err := c.SetInvoiceStatus(ctx, id, st)
				if err != nil {
					return err
				}
				fmt.Printf("invoice %d is now %s\n", inv.ID, inv.Status)
				return nil
			})(cmd, args)
		},
	})
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Clients and staff"}
	var role string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Users(ctx, role)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Name", "Company", "Email", "Role", "Status")
				for _, u := range items {
					tw.AppendRow(row(u.ID, u.Name, u.CompanyName, u.Email, u.Role, u.Status))
				}
				return tw
			})
		}),
	}
	list.Flags().StringVar(&role, "role", "", "role filter")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				u, err := c.SetUserStatus(ctx, id, domain.UserActive)
				if err != nil {
					return err
				}
				fmt.Printf("%s is now %s\n", u.CompanyName, u.Status)
				return nil
			})(cmd, args)
		},
	})
	return cmd
}

func documentCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "document", Short: "Document hub"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Documents(ctx)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Name", "Type", "Size", "Date", "Uploaded by")
				for _, d := range items {
					tw.AppendRow(row(d.ID, d.Name, d.Type, d.Size, d.Date, d.UploadedBy))
				}
				return tw
			})
		}),
	})
	var upload struct {
		name, typ string
		size      int64
	}
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Record an uploaded document",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			d, err := c.UploadDocument(ctx, upload.name, domain.DocumentType(upload.typ), upload.size)
			if err != nil {
				return err
			}
			fmt.Printf("document %d recorded as %s (%s)\n", d.ID, d.Name, d.Size)
			return nil
		}),
	}
	uploadCmd.Flags().StringVar(&upload.name, "name", "", "file name (generated when empty)")
	uploadCmd.Flags().StringVar(&upload.typ, "type", "", "pdf, word or excel")
	uploadCmd.Flags().Int64Var(&upload.size, "size", 0, "size in bytes")
	cmd.AddCommand(uploadCmd)
	return cmd
}

func messageCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "message", Short: "Conversations"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list [partner-id]",
		Short: "List conversations, or one thread when a partner is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				if len(args) == 0 {
					items, err := c.Conversations(ctx)
					if err != nil {
						return err
					}
					return output(items, func() table.Writer {
						tw := newTable("Partner", "Name", "Last message", "Sent")
						for _, s := range items {
							text, sent := "", ""
							if s.Last != nil {
								text, sent = s.Last.Text, s.Last.Timestamp
							}
							tw.AppendRow(row(s.Partner.ID, s.Partner.Name, text, sent))
						}
						return tw
					})
				}
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				msgs, err := c.Messages(ctx, id)
				if err != nil {
					return err
				}
				return output(msgs, func() table.Writer {
					tw := newTable("Sent", "From", "Text")
					for _, m := range msgs {
						tw.AppendRow(row(m.Timestamp, m.SenderID, m.Text))
					}
					return tw
				})
			})(cmd, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "send <partner-id> <text>",
		Short: "Send a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				m, err := c.SendMessage(ctx, id, args[1])
				if err != nil {
					return err
				}
				fmt.Printf("sent message %d in %s\n", m.ID, m.ConversationID)
				return nil
			})(cmd, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "draft <partner-id>",
		Short: "Ask the assistant to draft a follow-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				reply, err := c.DraftMessage(ctx, id)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reply)
				}
				fmt.Println(reply.Text)
				return nil
			})(cmd, args)
		},
	})
	return cmd
}

func notificationCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notification", Short: "Notifications"}
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			n, err := c.Notifications(ctx, limit)
			if err != nil {
				return err
			}
			return output(n, func() table.Writer {
				tw := newTable("ID", "Title", "Description", "Time", "Read")
				for _, item := range n.Items {
					tw.AppendRow(row(item.ID, item.Title, item.Description, item.Time, item.Read))
				}
				tw.AppendFooter(row("", fmt.Sprintf("%d unread", n.Unread)))
				return tw
			})
		}),
	}
	list.Flags().IntVar(&limit, "limit", 0, "max rows")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			n, err := c.MarkAllRead(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d notifications marked read\n", n)
			return nil
		}),
	})
	return cmd
}

func activityCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "activity", Short: "Activity log"}
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent activity",
		RunE: withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
			items, err := c.Activities(ctx, limit)
			if err != nil {
				return err
			}
			return output(items, func() table.Writer {
				tw := newTable("ID", "Type", "Title", "Description", "Time")
				for _, a := range items {
					tw.AppendRow(row(a.ID, a.Type, a.Title, a.Description, a.Time))
				}
				return tw
			})
		}),
	}
	list.Flags().IntVar(&limit, "limit", 20, "max rows")
	cmd.AddCommand(list)
	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant about your projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *rcadesksdk.Client) error {
				reply, err := c.Ask(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reply)
				}
				fmt.Println(reply.Text)
				return nil
			})(cmd, args)
		},
	}
}
