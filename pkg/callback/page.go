package callback

// loginPage is the static redirect target. The provider sends the browser here
// with code and state in the query; the page posts them back to the token
// route and reports failures to the error sink.
const loginPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Signing in…</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 4rem auto; max-width: 32rem; text-align: center; }
    .error { color: #b00020; }
  </style>
</head>
<body>
  <h1 id="title">Completing sign-in…</h1>
  <p id="message">You can close this window once sign-in completes.</p>
  <script>
    (function () {
      var params = new URLSearchParams(window.location.search);
      var payload = { code: params.get("code"), state: params.get("state") };
      fetch("/oidc/tokens", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify(payload)
      }).then(function (resp) {
        return resp.json().then(function (body) {
          if (body.success) {
            document.getElementById("title").textContent = "Signed in";
            document.getElementById("message").textContent = "You can close this window and return to the terminal.";
          } else {
            throw new Error(body.error || "sign-in failed");
          }
        });
      }).catch(function (err) {
        document.getElementById("title").textContent = "Sign-in failed";
        document.getElementById("title").className = "error";
        document.getElementById("message").textContent = String(err.message || err);
        fetch("/oidc/errors", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ error: String(err.message || err) })
        }).catch(function () {});
      });
    })();
  </script>
</body>
</html>
`
