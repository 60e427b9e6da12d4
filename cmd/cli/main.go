package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

var client = &http.Client{}

func main() {
	app := &cli.App{
		Name:  "market",
		Usage: "operate the marketplace engine over its API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "market API base URL"},
			&cli.StringFlag{Name: "caller", Value: "", Usage: "account the request acts as"},
		},
		Commands: []*cli.Command{
			{
				Name:   "items",
				Usage:  "show the item ledger",
				Action: getItems,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "active", Usage: "only purchasable items"},
				},
			},
			{
				Name:      "item",
				Usage:     "show one item",
				ArgsUsage: "ITEM_ID",
				Action:    getItem,
			},
			{
				Name:   "list",
				Usage:  "list a token for sale",
				Action: listItem,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "collection", Required: true, Usage: "collection address"},
					&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
					&cli.StringFlag{Name: "price", Required: true, Usage: "asking price in quote units"},
				},
			},
			{
				Name:      "buy",
				Usage:     "buy an item",
				ArgsUsage: "ITEM_ID",
				Action:    buyItem,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "payment", Required: true, Usage: "native amount to pay"},
				},
			},
			{
				Name:      "set-price",
				Usage:     "change an item's asking price",
				ArgsUsage: "ITEM_ID",
				Action:    setPrice,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "price", Required: true, Usage: "new asking price in quote units"},
				},
			},
			{
				Name:      "toggle",
				Usage:     "flip an item's active flag",
				ArgsUsage: "ITEM_ID",
				Action:    toggleItem,
			},
			{
				Name:   "actions",
				Usage:  "show the market action feed",
				Action: getActions,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "filter by action type"},
				},
			},
			{
				Name:  "collections",
				Usage: "manage collection registrations",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "show registered collections",
						Action: getCollections,
					},
					{
						Name:   "register",
						Usage:  "register a third party collection",
						Action: registerCollection,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "address", Required: true, Usage: "collection address"},
							&cli.Uint64Flag{Name: "fee", Usage: "platform fee in basis points"},
						},
					},
					{
						Name:      "deregister",
						Usage:     "remove a collection registration",
						ArgsUsage: "ADDRESS",
						Action:    deregisterCollection,
					},
					{
						Name:      "activate",
						Usage:     "set a collection's active flag",
						ArgsUsage: "ADDRESS",
						Action:    activateCollection,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "active", Value: true, Usage: "target state"},
						},
					},
					{
						Name:      "fee",
						Usage:     "change a collection's platform fee",
						ArgsUsage: "ADDRESS",
						Action:    setCollectionFee,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "fee", Required: true, Usage: "platform fee in basis points"},
						},
					},
				},
			},
			{
				Name:  "contracts",
				Usage: "operate the deployed token contracts",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "show deployed contracts",
						Action: getContracts,
					},
					{
						Name:      "tokens",
						Usage:     "show a contract's archived token ledger",
						ArgsUsage: "ADDRESS",
						Action:    getContractTokens,
					},
					{
						Name:      "mint",
						Usage:     "mint tokens to an account",
						ArgsUsage: "ADDRESS",
						Action:    mintToken,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
							&cli.Uint64Flag{Name: "count", Value: 1, Usage: "number of tokens"},
						},
					},
					{
						Name:      "transfer",
						Usage:     "transfer a token",
						ArgsUsage: "ADDRESS",
						Action:    transferToken,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "from", Required: true, Usage: "current owner"},
							&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
							&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
						},
					},
					{
						Name:      "burn",
						Usage:     "burn a token",
						ArgsUsage: "ADDRESS",
						Action:    burnToken,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
						},
					},
					{
						Name:      "approve",
						Usage:     "set an operator approval for all of the caller's tokens",
						ArgsUsage: "ADDRESS",
						Action:    setApproval,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "operator", Required: true, Usage: "operator address"},
							&cli.BoolFlag{Name: "approved", Value: true, Usage: "target state"},
						},
					},
					{
						Name:      "claim",
						Usage:     "claim the caller's airdrop token",
						ArgsUsage: "ADDRESS",
						Action:    claimToken,
					},
					{
						Name:      "token",
						Usage:     "show a token's owner and URI",
						ArgsUsage: "ADDRESS",
						Action:    getToken,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "token", Required: true, Usage: "token id"},
						},
					},
				},
			},
			{
				Name:  "roles",
				Usage: "manage access roles",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "show registered roles",
						Action: getRoles,
					},
					{
						Name:   "register",
						Usage:  "register a custom role",
						Action: registerRole,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true, Usage: "role name"},
						},
					},
					{
						Name:   "grant",
						Usage:  "grant a role to an account",
						Action: grantRole,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true, Usage: "role name"},
							&cli.StringFlag{Name: "account", Required: true, Usage: "account address"},
							&cli.BoolFlag{Name: "whitelist", Usage: "grant through the whitelist"},
						},
					},
					{
						Name:   "revoke",
						Usage:  "revoke a role from an account",
						Action: revokeRole,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true, Usage: "role name"},
							&cli.StringFlag{Name: "account", Required: true, Usage: "account address"},
							&cli.BoolFlag{Name: "whitelist", Usage: "revoke a whitelist entry"},
						},
					},
					{
						Name:   "members",
						Usage:  "show a role's members",
						Action: getRoleMembers,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true, Usage: "role name"},
						},
					},
				},
			},
			{
				Name:  "airdrop",
				Usage: "manage airdrop eligibility",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "add an eligible account",
						Action: addAirdropMember,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "collection", Required: true, Usage: "collection address"},
							&cli.StringFlag{Name: "account", Required: true, Usage: "account address"},
						},
					},
					{
						Name:   "claim",
						Usage:  "mark an airdrop claimed",
						Action: claimAirdrop,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "collection", Required: true, Usage: "collection address"},
							&cli.StringFlag{Name: "account", Required: true, Usage: "account address"},
						},
					},
					{
						Name:   "members",
						Usage:  "show eligible accounts",
						Action: getAirdropMembers,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "collection", Required: true, Usage: "collection address"},
						},
					},
				},
			},
			{
				Name:  "presale",
				Usage: "operate the presale",
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "show phase and totals",
						Action: presaleStatus,
					},
					{
						Name:   "contribute",
						Usage:  "contribute native funds",
						Action: presaleContribute,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "amount", Required: true, Usage: "native amount"},
						},
					},
					{
						Name:      "phase",
						Usage:     "move the presale phase",
						ArgsUsage: "private|public|closed",
						Action:    presalePhase,
					},
					{
						Name:   "pause",
						Usage:  "pause the presale",
						Action: presalePause,
					},
					{
						Name:   "unpause",
						Usage:  "unpause the presale",
						Action: presaleUnpause,
					},
				},
			},
			{
				Name:   "pause",
				Usage:  "pause the marketplace",
				Action: pauseMarket,
			},
			{
				Name:   "unpause",
				Usage:  "unpause the marketplace",
				Action: unpauseMarket,
			},
			{
				Name:   "withdraw",
				Usage:  "sweep the marketplace balance to the fee account",
				Action: withdraw,
			},
			{
				Name:   "deposit",
				Usage:  "credit native balance, dev networks only",
				Action: deposit,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true, Usage: "account address"},
					&cli.StringFlag{Name: "amount", Required: true, Usage: "native amount"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getItems(c *cli.Context) error {
	path := "/items"
	if c.Bool("active") {
		path += "?active=true"
	}

	return call(c, "GET", path, nil)
}

func getItem(c *cli.Context) error {
	return call(c, "GET", "/items/"+c.Args().First(), nil)
}

func listItem(c *cli.Context) error {
	return call(c, "POST", "/items", map[string]interface{}{
		"collection": c.String("collection"),
		"tokenId":    c.Uint64("token"),
		"price":      c.String("price"),
	})
}

func buyItem(c *cli.Context) error {
	return call(c, "POST", "/items/"+c.Args().First()+"/buy", map[string]interface{}{
		"payment": c.String("payment"),
	})
}

func setPrice(c *cli.Context) error {
	return call(c, "PUT", "/items/"+c.Args().First()+"/price", map[string]interface{}{
		"price": c.String("price"),
	})
}

func toggleItem(c *cli.Context) error {
	return call(c, "POST", "/items/"+c.Args().First()+"/toggle", nil)
}

func getActions(c *cli.Context) error {
	path := "/actions"
	if kind := c.String("type"); kind != "" {
		path += "?type=" + kind
	}

	return call(c, "GET", path, nil)
}

func getCollections(c *cli.Context) error {
	return call(c, "GET", "/collections", nil)
}

func registerCollection(c *cli.Context) error {
	return call(c, "POST", "/collections", map[string]interface{}{
		"address": c.String("address"),
		"feeBps":  c.Uint64("fee"),
	})
}

func deregisterCollection(c *cli.Context) error {
	return call(c, "DELETE", "/collections/"+c.Args().First(), nil)
}

func activateCollection(c *cli.Context) error {
	return call(c, "PUT", "/collections/"+c.Args().First()+"/active", map[string]interface{}{
		"active": c.Bool("active"),
	})
}

func setCollectionFee(c *cli.Context) error {
	return call(c, "PUT", "/collections/"+c.Args().First()+"/fee", map[string]interface{}{
		"feeBps": c.Uint64("fee"),
	})
}

func getContracts(c *cli.Context) error {
	return call(c, "GET", "/contracts", nil)
}

func getContractTokens(c *cli.Context) error {
	return call(c, "GET", "/contracts/"+c.Args().First()+"/tokens", nil)
}

func mintToken(c *cli.Context) error {
	return call(c, "POST", "/contracts/"+c.Args().First()+"/mint", map[string]interface{}{
		"to":    c.String("to"),
		"count": c.Uint64("count"),
	})
}

func transferToken(c *cli.Context) error {
	return call(c, "POST", "/contracts/"+c.Args().First()+"/transfer", map[string]interface{}{
		"from":    c.String("from"),
		"to":      c.String("to"),
		"tokenId": c.Uint64("token"),
	})
}

func burnToken(c *cli.Context) error {
	return call(c, "POST", "/contracts/"+c.Args().First()+"/burn", map[string]interface{}{
		"tokenId": c.Uint64("token"),
	})
}

func setApproval(c *cli.Context) error {
	return call(c, "POST", "/contracts/"+c.Args().First()+"/approve", map[string]interface{}{
		"operator": c.String("operator"),
		"approved": c.Bool("approved"),
	})
}

func claimToken(c *cli.Context) error {
	return call(c, "POST", "/contracts/"+c.Args().First()+"/claim", nil)
}

func getToken(c *cli.Context) error {
	return call(c, "GET", fmt.Sprintf("/contracts/%s/tokens/%d", c.Args().First(), c.Uint64("token")), nil)
}

func getRoles(c *cli.Context) error {
	return call(c, "GET", "/roles", nil)
}

func registerRole(c *cli.Context) error {
	return call(c, "POST", "/roles", map[string]interface{}{
		"name": c.String("name"),
	})
}

func grantRole(c *cli.Context) error {
	return call(c, "POST", "/roles/"+c.String("name")+"/grant", map[string]interface{}{
		"account":   c.String("account"),
		"whitelist": c.Bool("whitelist"),
	})
}

func revokeRole(c *cli.Context) error {
	return call(c, "POST", "/roles/"+c.String("name")+"/revoke", map[string]interface{}{
		"account":   c.String("account"),
		"whitelist": c.Bool("whitelist"),
	})
}

func getRoleMembers(c *cli.Context) error {
	return call(c, "GET", "/roles/"+c.String("name")+"/members", nil)
}

func addAirdropMember(c *cli.Context) error {
	return call(c, "POST", "/airdrops/"+c.String("collection")+"/members", map[string]interface{}{
		"account": c.String("account"),
	})
}

func claimAirdrop(c *cli.Context) error {
	return call(c, "POST", "/airdrops/"+c.String("collection")+"/claim", map[string]interface{}{
		"account": c.String("account"),
	})
}

func getAirdropMembers(c *cli.Context) error {
	return call(c, "GET", "/airdrops/"+c.String("collection")+"/members", nil)
}

func presaleStatus(c *cli.Context) error {
	return call(c, "GET", "/presale", nil)
}

func presaleContribute(c *cli.Context) error {
	return call(c, "POST", "/presale/contribute", map[string]interface{}{
		"amount": c.String("amount"),
	})
}

func presalePhase(c *cli.Context) error {
	return call(c, "PUT", "/presale/phase", map[string]interface{}{
		"phase": c.Args().First(),
	})
}

func presalePause(c *cli.Context) error {
	return call(c, "POST", "/presale/pause", nil)
}

func presaleUnpause(c *cli.Context) error {
	return call(c, "POST", "/presale/unpause", nil)
}

func pauseMarket(c *cli.Context) error {
	return call(c, "POST", "/admin/pause", nil)
}

func unpauseMarket(c *cli.Context) error {
	return call(c, "POST", "/admin/unpause", nil)
}

func withdraw(c *cli.Context) error {
	return call(c, "POST", "/admin/withdraw", nil)
}

func deposit(c *cli.Context) error {
	return call(c, "POST", "/admin/deposit", map[string]interface{}{
		"account": c.String("account"),
		"amount":  c.String("amount"),
	})
}

// call performs the request and prints the response body. Non-2xx responses
// come back as errors so the process exits non-zero.
func call(c *cli.Context, method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.String("api")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller := c.String("caller"); caller != "" {
		req.Header.Set("X-Caller", caller)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	out := strings.TrimSpace(string(data))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: %s", resp.Status, out)
	}

	if out == "" {
		out = resp.Status
	}
	fmt.Println(out)

	return nil
}
